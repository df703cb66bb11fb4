package tgutil

import (
	"github.com/gotd/td/telegram/dcs"
	"github.com/krau/SaveLink-Bot/common/utils/netutil"
	"github.com/krau/SaveLink-Bot/config"
)

func NewConfigProxyResolver() (dcs.Resolver, error) {
	resolver := dcs.DefaultResolver()
	if config.C().Telegram.Proxy.Enable && config.C().Telegram.Proxy.URL != "" {
		dialer, err := netutil.NewProxyDialer(config.C().Telegram.Proxy.URL)
		if err != nil {
			return nil, err
		}
		resolver = dcs.Plain(dcs.PlainOptions{
			Dial: dialer.DialContext,
		})
	}
	return resolver, nil
}
