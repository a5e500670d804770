package service

import (
	"agentcomm.app/relay/core/config"
	"agentcomm.app/relay/internal/store"
)

type Services struct {
	stores    store.Provider
	txRunner  TxRunner
	handler   MessageHandler
	lifecycle RequestLifecycle
	cfg       config.Config
}

func NewServices(stores store.Provider, txRunner TxRunner, handler MessageHandler, lifecycle RequestLifecycle, cfg config.Config) *Services {
	return &Services{
		stores:    stores,
		txRunner:  txRunner,
		handler:   handler,
		lifecycle: lifecycle,
		cfg:       cfg,
	}
}

func (s *Services) Agent() AgentService {
	return NewAgentService(s.stores.Users(), s.handler, s.lifecycle)
}

func (s *Services) Notifications() NotificationService {
	return NewNotificationService(s.stores.Notifications())
}

func (s *Services) Directory() DirectoryService {
	return NewDirectoryService(s.stores.Users(), s.txRunner)
}

func (s *Services) Auth() AuthService {
	return NewAuthService(
		s.stores.Users(),
		s.stores.Sessions(),
		s.txRunner,
		s.cfg.WorkOS,
		s.cfg.JWT,
	)
}

func (s *Services) DashboardURL() string {
	return s.cfg.DashboardURL
}
