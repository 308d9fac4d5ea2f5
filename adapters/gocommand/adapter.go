package gocommand

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorRegistryMissing = "GOCOMMAND_REGISTRY_MISSING"
	ErrorInvalidMessage  = "GOCOMMAND_INVALID_MESSAGE"
)

// ValidateMessageContract enforces Type() plus the optional Validate().
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return adapterError(ErrorInvalidMessage, "gocommand: message validation failed", err)
	}
	m, ok := msg.(command.Message)
	if !ok {
		return adapterError(ErrorInvalidMessage, "gocommand: message must implement Type() string", nil)
	}
	if strings.TrimSpace(m.Type()) == "" {
		return adapterError(ErrorInvalidMessage, "gocommand: message type is required", nil)
	}
	return nil
}

// RegistryAdapter is the registration surface the facade writes into.
type RegistryAdapter struct {
	registry      *command.Registry
	subscriptions []commanddispatcher.Subscription
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return registryMissing()
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return registryMissing()
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return registryMissing()
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return registryMissing()
	}
	return a.registry.Initialize()
}

// Close drops every dispatcher subscription made through this adapter.
func (a *RegistryAdapter) Close() {
	if a == nil {
		return
	}
	for _, subscription := range a.subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
	a.subscriptions = nil
}

func (a *RegistryAdapter) track(subscription commanddispatcher.Subscription) {
	if subscription != nil {
		a.subscriptions = append(a.subscriptions, subscription)
	}
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// RegisterAndSubscribe registers cmd and subscribes it on the global
// dispatcher. The subscription is dropped if registration fails.
func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, registryMissing()
	}
	if cmd == nil {
		return nil, adapterError(ErrorInvalidMessage, "gocommand: command is required", nil)
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	adapter.track(subscription)
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, registryMissing()
	}
	if qry == nil {
		return nil, adapterError(ErrorInvalidMessage, "gocommand: query is required", nil)
	}
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	adapter.track(subscription)
	return subscription, nil
}

func registryMissing() error {
	return adapterError(ErrorRegistryMissing, "gocommand: registry is not configured", nil)
}

func adapterError(textCode string, message string, cause error) error {
	category := goerrors.CategoryBadInput
	code := http.StatusBadRequest
	if textCode == ErrorRegistryMissing {
		category = goerrors.CategoryInternal
		code = http.StatusInternalServerError
	}
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	err.Source = cause
	return err
}
