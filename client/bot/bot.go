package bot

import (
	"context"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/tg"
	"github.com/krau/SaveLink-Bot/client/bot/handlers"
	"github.com/krau/SaveLink-Bot/client/middleware"
	"github.com/krau/SaveLink-Bot/common/i18n"
	"github.com/krau/SaveLink-Bot/common/utils/tgutil"
	"github.com/krau/SaveLink-Bot/config"
	"github.com/krau/SaveLink-Bot/database"
)

type Bot struct {
	client *gotgproto.Client
	ectx   *ext.Context
}

// New logs the bot in and publishes its command list.
func New(ctx context.Context) (*Bot, error) {
	logger := log.FromContext(ctx)
	logger.Info("Initializing Bot...")
	type result struct {
		client *gotgproto.Client
		err    error
	}
	resultChan := make(chan result, 1)

	go func() {
		resolver, err := tgutil.NewConfigProxyResolver()
		if err != nil {
			resultChan <- result{nil, err}
			return
		}
		client, err := gotgproto.NewClient(
			config.C().Telegram.AppID,
			config.C().Telegram.AppHash,
			gotgproto.ClientTypeBot(config.C().Telegram.Token),
			&gotgproto.ClientOpts{
				Session:          sessionMaker.SqlSession(database.GetDialect(config.C().DB.Session)),
				DisableCopyright: true,
				Middlewares:      middleware.NewDefaultMiddlewares(ctx, 5*time.Minute),
				Resolver:         resolver,
				Context:          ctx,
				MaxRetries:       config.C().Telegram.RpcRetry,
				AutoFetchReply:   true,
				ErrorHandler: func(ctx *ext.Context, u *ext.Update, s string) error {
					log.FromContext(ctx).Errorf("unhandled error: %s", s)
					return dispatcher.EndGroups
				},
			},
		)
		if err != nil {
			resultChan <- result{nil, err}
			return
		}
		commands := make([]tg.BotCommand, 0, len(handlers.CommandHandlers))
		for _, info := range handlers.CommandHandlers {
			commands = append(commands, tg.BotCommand{Command: info.Cmd, Description: i18n.T(info.Desc)})
		}
		if _, err := client.API().BotsSetBotCommands(ctx, &tg.BotsSetBotCommandsRequest{
			Scope:    &tg.BotCommandScopeDefault{},
			Commands: commands,
		}); err != nil {
			logger.Warn("Failed to set bot commands", "err", err)
		}
		resultChan <- result{client, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.err != nil {
			return nil, res.err
		}
		logger.Info("Bot initialization completed.", "username", res.client.Self.Username)
		return &Bot{client: res.client, ectx: res.client.CreateContext()}, nil
	}
}

// Context is the long lived context used for sending outside of update handlers.
func (b *Bot) Context() *ext.Context {
	return b.ectx
}

// Serve registers the update handlers; updates flow until Stop.
func (b *Bot) Serve(deps handlers.Deps) {
	handlers.Register(b.client.Dispatcher, deps)
}

func (b *Bot) Stop() {
	b.client.Stop()
}
