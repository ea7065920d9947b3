package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pharmacy-admin-console/internal/adapters/apiclient"
	"pharmacy-admin-console/internal/adapters/jwtinspect"
	logger_adapter "pharmacy-admin-console/internal/adapters/logger"
	"pharmacy-admin-console/internal/adapters/sessionfile"
	"pharmacy-admin-console/internal/configs"
	"pharmacy-admin-console/internal/constants"
	"pharmacy-admin-console/internal/contextkeys"
	"pharmacy-admin-console/internal/core/domain"
	"pharmacy-admin-console/internal/core/port"
	"pharmacy-admin-console/internal/core/session"
	"pharmacy-admin-console/internal/core/store"
	"pharmacy-admin-console/pkg/fluentlogger"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/google/uuid"
)

type App struct {
	config  *configs.AppConfig
	logger  port.LoggerPort
	session *session.Manager

	fluentClient *fluent.Fluent // <-- ДЛЯ КОРРЕКТНОГО ЗАКРЫТИЯ

	// Семь сторов панели - по одному на ресурс
	users       *store.Store[domain.User]
	ads         *store.Store[domain.Advertisement]
	adsRequests *store.Store[domain.AdRequest]
	contactUs   *store.Store[domain.ContactMessage]
	deals       *store.Store[domain.Deal]
	drugs       *store.Store[domain.Drug]
	pharmacies  *store.Store[domain.Pharmacy]
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName, // Используем имя приложения как префикс
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{
		"app_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 2. ТРАНСПОРТ И СЕССИЯ ---
	transport := apiclient.NewClient(appConfig.ApiClient.BaseURL, time.Duration(appConfig.ApiClient.TimeoutSeconds)*time.Second)

	sessionStorage, err := sessionfile.NewStorage(appConfig.Session.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create session storage: %w", err)
	}

	authClient := apiclient.NewAuthClient(transport)
	sessionManager, err := session.NewManager(authClient, sessionStorage, jwtinspect.NewTokenInspector())
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	// Сессия и транспорт связаны в обе стороны: транспорт берет токен
	// из сессии, а на 401 сбрасывает ее (аналог редиректа на /login).
	transport.SetTokenSource(sessionManager.Token)
	transport.SetUnauthorizedHook(func() {
		appLogger.Warn("Backend returned 401, session invalidated", nil)
		sessionManager.Invalidate()
	})
	appLogger.Info("Transport and session initialized", port.Fields{"base_url": appConfig.ApiClient.BaseURL})

	// --- 3. МОДУЛИ ЭНДПОИНТОВ ---
	usersAPI, err := apiclient.NewResourceClient[domain.User](transport, apiclient.ResourceConfig{
		Name: constants.ResourceUsers, Path: constants.PathUsers, Key: constants.EnvelopeKeyUsers,
	})
	if err != nil {
		return nil, err
	}
	adsAPI, err := apiclient.NewResourceClient[domain.Advertisement](transport, apiclient.ResourceConfig{
		Name: constants.ResourceAds, Path: constants.PathAds, Key: constants.EnvelopeKeyAds,
	})
	if err != nil {
		return nil, err
	}
	adsRequestsAPI, err := apiclient.NewResourceClient[domain.AdRequest](transport, apiclient.ResourceConfig{
		Name: constants.ResourceAdsRequests, Path: constants.PathAdsRequests, Key: constants.EnvelopeKeyAdsRequests,
	})
	if err != nil {
		return nil, err
	}
	contactUsAPI, err := apiclient.NewResourceClient[domain.ContactMessage](transport, apiclient.ResourceConfig{
		Name: constants.ResourceContactUs, Path: constants.PathContactUs, Key: constants.EnvelopeKeyContactUs,
	})
	if err != nil {
		return nil, err
	}
	dealsAPI, err := apiclient.NewResourceClient[domain.Deal](transport, apiclient.ResourceConfig{
		Name: constants.ResourceDeals, Path: constants.PathDeals, Key: constants.EnvelopeKeyDeals,
	})
	if err != nil {
		return nil, err
	}
	drugsAPI, err := apiclient.NewResourceClient[domain.Drug](transport, apiclient.ResourceConfig{
		Name: constants.ResourceDrugs, Path: constants.PathDrugs, Key: constants.EnvelopeKeyDrugs,
	})
	if err != nil {
		return nil, err
	}
	pharmaciesAPI, err := apiclient.NewResourceClient[domain.Pharmacy](transport, apiclient.ResourceConfig{
		Name: constants.ResourcePharmacies, Path: constants.PathPharmacies, Key: constants.EnvelopeKeyPharmacies,
	})
	if err != nil {
		return nil, err
	}

	// --- 4. СТОРЫ ---
	usersStore, err := store.NewUsersStore(usersAPI, usersAPI)
	if err != nil {
		return nil, err
	}
	adsStore, err := store.NewAdsStore(adsAPI)
	if err != nil {
		return nil, err
	}
	adsRequestsStore, err := store.NewAdsRequestsStore(adsRequestsAPI)
	if err != nil {
		return nil, err
	}
	contactUsStore, err := store.NewContactUsStore(contactUsAPI)
	if err != nil {
		return nil, err
	}
	dealsStore, err := store.NewDealsStore(dealsAPI)
	if err != nil {
		return nil, err
	}
	drugsStore, err := store.NewDrugsStore(drugsAPI)
	if err != nil {
		return nil, err
	}
	pharmaciesStore, err := store.NewPharmaciesStore(pharmaciesAPI, pharmaciesAPI)
	if err != nil {
		return nil, err
	}

	appLogger.Info("All resource stores initialized", nil)

	application := &App{
		config:       appConfig,
		logger:       appLogger,
		session:      sessionManager,
		fluentClient: fluentClient,
		users:        usersStore,
		ads:          adsStore,
		adsRequests:  adsRequestsStore,
		contactUs:    contactUsStore,
		deals:        dealsStore,
		drugs:        drugsStore,
		pharmacies:   pharmaciesStore,
	}

	return application, nil
}

// Run выполняет одну команду консоли и завершает работу.
func (a *App) Run(args []string) error {
	defer func() {
		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Логируем в stdout, так как fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	// Единый контекст команды: завершение по Ctrl+C, логгер и trace_id внутри
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	traceID := uuid.New().String()
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, a.logger.WithFields(port.Fields{"trace_id": traceID}))

	// Поднимаем сохранённую сессию до выполнения команды
	if err := a.session.Restore(ctx); err != nil {
		return err
	}

	return a.dispatch(ctx, args)
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Возвращаем безопасное значение по умолчанию и логируем предупреждение
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
