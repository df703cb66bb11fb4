package i18nk

type Key string

const (
	Initing          Key = "initing"
	Exiting          Key = "exiting"
	Bye              Key = "bye"
	CleaningCache    Key = "cleaning_cache"
	InvalidCacheDir  Key = "invalid_cache_dir"
	CleanCacheFailed Key = "clean_cache_failed"

	BotMsgCmdStart         Key = "bot.msg.cmd.start"
	BotMsgCmdHelp          Key = "bot.msg.cmd.help"
	BotMsgCmdCancel        Key = "bot.msg.cmd.cancel"
	BotMsgCmdPlan          Key = "bot.msg.cmd.plan"
	BotMsgCmdSetting       Key = "bot.msg.cmd.setting"
	BotMsgCmdPremium       Key = "bot.msg.cmd.premium"
	BotMsgCmdRemovePremium Key = "bot.msg.cmd.removepremium"
	BotMsgCmdCheckPremium  Key = "bot.msg.cmd.checkpremium"
	BotMsgCmdBan           Key = "bot.msg.cmd.ban"
	BotMsgCmdUnban         Key = "bot.msg.cmd.unban"
	BotMsgCmdBroadcast     Key = "bot.msg.cmd.broadcast"
	BotMsgCmdStats         Key = "bot.msg.cmd.stats"

	BotMsgCommonErrorInternal     Key = "bot.msg.common.error.internal"
	BotMsgCommonErrorNoPermission Key = "bot.msg.common.error.no_permission"
	BotMsgCommonErrorPremiumOnly  Key = "bot.msg.common.error.premium_only"
	BotMsgCommonErrorInvalidUser  Key = "bot.msg.common.error.invalid_user"
	BotMsgCommonTierFree          Key = "bot.msg.common.tier.free"
	BotMsgCommonTierPremium       Key = "bot.msg.common.tier.premium"
	BotMsgCommonTierOwner         Key = "bot.msg.common.tier.owner"
	BotMsgCommonUnlimited         Key = "bot.msg.common.unlimited"
	BotMsgCommonNotSet            Key = "bot.msg.common.not_set"
	BotMsgCommonErrorBanned       Key = "bot.msg.common.error.banned"

	BotMsgForceSubInfoPrompt  Key = "bot.msg.force_sub.info.prompt"
	BotMsgForceSubInfoJoined  Key = "bot.msg.force_sub.info.joined"
	BotMsgForceSubErrorNotYet Key = "bot.msg.force_sub.error.not_yet"
	BotMsgForceSubBtnJoin     Key = "bot.msg.force_sub.btn.join"
	BotMsgForceSubBtnCheck    Key = "bot.msg.force_sub.btn.check"

	BotMsgStartInfoWelcome Key = "bot.msg.start.info.welcome"
	BotMsgHelpInfoText     Key = "bot.msg.help.info.text"
	BotMsgPlanInfoStatus   Key = "bot.msg.plan.info.status"

	BotMsgSubmitErrorNoLinks        Key = "bot.msg.submit.error.no_links"
	BotMsgSubmitErrorNoSupported    Key = "bot.msg.submit.error.no_supported"
	BotMsgSubmitErrorQuotaExceeded  Key = "bot.msg.submit.error.quota_exceeded"
	BotMsgSubmitErrorNotTxt         Key = "bot.msg.submit.error.not_txt"
	BotMsgSubmitErrorFileTooLarge   Key = "bot.msg.submit.error.file_too_large"
	BotMsgSubmitErrorReadFileFailed Key = "bot.msg.submit.error.read_file_failed"
	BotMsgSubmitInfoTasksAdded      Key = "bot.msg.submit.info.tasks_added"

	BotMsgCancelInfoCancelled Key = "bot.msg.cancel.info.cancelled"
	BotMsgCancelInfoNothing   Key = "bot.msg.cancel.info.nothing"

	BotMsgPremiumUsageGrant        Key = "bot.msg.premium.usage.grant"
	BotMsgPremiumUsageRevoke       Key = "bot.msg.premium.usage.revoke"
	BotMsgPremiumErrorInvalidDays  Key = "bot.msg.premium.error.invalid_days"
	BotMsgPremiumInfoGranted       Key = "bot.msg.premium.info.granted"
	BotMsgPremiumInfoGrantedNotify Key = "bot.msg.premium.info.granted_notify"
	BotMsgPremiumInfoRevoked       Key = "bot.msg.premium.info.revoked"
	BotMsgPremiumInfoRevokedNotify Key = "bot.msg.premium.info.revoked_notify"
	BotMsgPremiumInfoActive        Key = "bot.msg.premium.info.active"
	BotMsgPremiumInfoInactive      Key = "bot.msg.premium.info.inactive"
	BotMsgPremiumLogGranted        Key = "bot.msg.premium.log.granted"
	BotMsgPremiumLogRevoked        Key = "bot.msg.premium.log.revoked"

	BotMsgAdminUsageBan              Key = "bot.msg.admin.usage.ban"
	BotMsgAdminUsageUnban            Key = "bot.msg.admin.usage.unban"
	BotMsgAdminUsageBroadcast        Key = "bot.msg.admin.usage.broadcast"
	BotMsgAdminErrorNoUsers          Key = "bot.msg.admin.error.no_users"
	BotMsgAdminInfoBanned            Key = "bot.msg.admin.info.banned"
	BotMsgAdminInfoUnbanned          Key = "bot.msg.admin.info.unbanned"
	BotMsgAdminInfoBroadcastStarted  Key = "bot.msg.admin.info.broadcast_started"
	BotMsgAdminInfoBroadcastProgress Key = "bot.msg.admin.info.broadcast_progress"
	BotMsgAdminInfoBroadcastDone     Key = "bot.msg.admin.info.broadcast_done"
	BotMsgAdminInfoStats             Key = "bot.msg.admin.info.stats"
	BotMsgAdminLogBanned             Key = "bot.msg.admin.log.banned"
	BotMsgAdminLogUnbanned           Key = "bot.msg.admin.log.unbanned"
	BotMsgAdminLogBroadcast          Key = "bot.msg.admin.log.broadcast"

	BotMsgSettingInfoMenu         Key = "bot.msg.setting.info.menu"
	BotMsgSettingPromptChat       Key = "bot.msg.setting.prompt.chat"
	BotMsgSettingPromptCaption    Key = "bot.msg.setting.prompt.caption"
	BotMsgSettingPromptThumb      Key = "bot.msg.setting.prompt.thumb"
	BotMsgSettingPromptReset      Key = "bot.msg.setting.prompt.reset"
	BotMsgSettingInfoChatSaved    Key = "bot.msg.setting.info.chat_saved"
	BotMsgSettingInfoCaptionSaved Key = "bot.msg.setting.info.caption_saved"
	BotMsgSettingInfoThumbSaved   Key = "bot.msg.setting.info.thumb_saved"
	BotMsgSettingInfoResetDone    Key = "bot.msg.setting.info.reset_done"
	BotMsgSettingInfoCancelled    Key = "bot.msg.setting.info.cancelled"
	BotMsgSettingErrorInvalidChat Key = "bot.msg.setting.error.invalid_chat"
	BotMsgSettingErrorNeedPhoto   Key = "bot.msg.setting.error.need_photo"
	BotMsgSettingBtnChat          Key = "bot.msg.setting.btn.chat"
	BotMsgSettingBtnCaption       Key = "bot.msg.setting.btn.caption"
	BotMsgSettingBtnThumb         Key = "bot.msg.setting.btn.thumb"
	BotMsgSettingBtnReset         Key = "bot.msg.setting.btn.reset"
	BotMsgSettingBtnConfirm       Key = "bot.msg.setting.btn.confirm"
	BotMsgSettingBtnCancel        Key = "bot.msg.setting.btn.cancel"
	BotMsgSettingBtnClose         Key = "bot.msg.setting.btn.close"

	BotMsgProgressQueue       Key = "bot.msg.progress.queue"
	BotMsgProgressResolving   Key = "bot.msg.progress.resolving"
	BotMsgProgressDownloading Key = "bot.msg.progress.downloading"
	BotMsgProgressUploading   Key = "bot.msg.progress.uploading"

	BotMsgSummaryInfoText       Key = "bot.msg.summary.info.text"
	BotMsgSummaryInfoNone       Key = "bot.msg.summary.info.none"
	BotMsgSummaryInfoFailedLine Key = "bot.msg.summary.info.failed_line"

	BotMsgDeliveryCaptionDefault Key = "bot.msg.delivery.caption_default"
	BotMsgDeliveryLogDone        Key = "bot.msg.delivery.log_done"
	BotMsgDeliveryLogFailed      Key = "bot.msg.delivery.log_failed"

	ReasonUnsupported Key = "reason.unsupported"
	ReasonHTTPStatus  Key = "reason.http_status"
	ReasonEmptyBody   Key = "reason.empty_body"
	ReasonHTMLPage    Key = "reason.html_page"
	ReasonNoMatch     Key = "reason.no_match"
	ReasonTimeout     Key = "reason.timeout"
	ReasonTooLarge    Key = "reason.too_large"
	ReasonNetwork     Key = "reason.network"
	ReasonCancelled   Key = "reason.cancelled"
	ReasonDelivery    Key = "reason.delivery"
	ReasonUnknown     Key = "reason.unknown"
)
