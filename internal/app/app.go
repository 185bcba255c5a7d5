package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"NewsAnalyzer/internal/api"
	"NewsAnalyzer/internal/clickbait"
	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/determinism"
	"NewsAnalyzer/internal/freshness"
	"NewsAnalyzer/internal/infrastructure/cache"
	"NewsAnalyzer/internal/infrastructure/fetcher"
	"NewsAnalyzer/internal/infrastructure/hf"
	"NewsAnalyzer/internal/infrastructure/llm"
	"NewsAnalyzer/internal/infrastructure/ml"
	"NewsAnalyzer/internal/logging"
	"NewsAnalyzer/internal/modelhandle"
	"NewsAnalyzer/internal/ports"
	"NewsAnalyzer/internal/quotes"
	"NewsAnalyzer/internal/scanner"
	"NewsAnalyzer/internal/sentiment"
	"NewsAnalyzer/internal/textfeatures"
	"NewsAnalyzer/internal/usecase"
	"NewsAnalyzer/internal/water"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	Analyzer  *usecase.Analyzer
	Sentiment *sentiment.Orchestrator
	Water     *water.Service
	Clickbait *clickbait.Detector

	sentimentModel *modelhandle.Handle[ports.SentimentModel]
	clickbaitModel *modelhandle.Handle[ports.ClickbaitModel]
	waterModel     *modelhandle.Handle[ports.ProbabilityModel]

	mu      sync.Mutex
	closers []func() error
}

// New builds the application. Models are not loaded here; they load on first
// use or on Warmup.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	mlClient := ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey, cfg.ML.Timeout, cfg.ML.Retries, baseLogger.With("component", "ml"))
	modelLogger := baseLogger.With("component", "models")
	a.sentimentModel = modelhandle.New("sentiment", a.sentimentLoader(mlClient), modelLogger)
	a.clickbaitModel = modelhandle.New("clickbait", a.clickbaitLoader(mlClient), modelLogger)
	a.waterModel = modelhandle.New("water", a.waterLoader(mlClient), modelLogger)

	articleFetcher, err := a.buildFetcher(ctx)
	if err != nil {
		return nil, err
	}

	a.Sentiment = sentiment.NewOrchestrator(a.sentimentModel, baseLogger.With("component", "sentiment"))
	a.Water = water.NewService(water.Config{
		ContractVersion: cfg.Models.Water.ContractVersion,
		DetectorVersion: cfg.Models.Water.DetectorVersion,
		TextMinLength:   cfg.Models.Water.TextMinLength,
		TextMaxLength:   cfg.Models.Water.TextMaxLength,
		BatchParallel:   cfg.Models.Water.BatchParallel,
	}, textfeatures.NewExtractor(textfeatures.SuffixMorphology{}), a.waterModel, baseLogger.With("component", "water"))
	a.Clickbait = clickbait.NewDetector(clickbait.Config{
		Threshold:       cfg.Models.Clickbait.Threshold,
		PositiveLabel:   cfg.Models.Clickbait.PositiveLabel,
		ContractVersion: cfg.Models.Clickbait.ContractVersion,
		DetectorVersion: cfg.Models.Clickbait.DetectorVersion,
	}, a.clickbaitModel, baseLogger.With("component", "clickbait"))

	a.Analyzer = usecase.NewAnalyzer(usecase.AnalyzerDeps{
		Fetcher:   articleFetcher,
		Freshness: freshness.NewEvaluator(cfg.Freshness.Location(), cfg.Freshness.RecentDays),
		Quotes:    quotes.NewSplitter(),
		Sentiment: a.Sentiment,
		Versions:  determinism.Versions{Contract: cfg.Versions.Contract, Model: cfg.Versions.Model},
		Logger:    baseLogger.With("component", "analyzer"),
	})
	return a, nil
}

// Services exposes the use cases to transports.
func (a *Application) Services() api.Services {
	return api.Services{
		Analyzer:  a.Analyzer,
		Water:     a.Water,
		Clickbait: a.Clickbait,
		Sentiment: a.Sentiment,
		Version:   a.cfg.Versions.Contract,
	}
}

// Logger returns the base application logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Warmup loads every model once. Failures are logged and remembered by the
// handles; requests then degrade instead of retrying the load.
func (a *Application) Warmup(ctx context.Context) {
	for _, warm := range []func(context.Context) error{
		a.sentimentModel.Warmup,
		a.clickbaitModel.Warmup,
		a.waterModel.Warmup,
	} {
		if err := warm(ctx); err != nil {
			a.logger.Warn("model warmup failed", "error", err)
		}
	}
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func (a *Application) Serve(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    a.cfg.HTTP.Addr,
		Handler: api.NewRouter(a.Services(), a.logger.With("component", "api")),
	}

	go a.Warmup(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	a.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close releases model sessions and connections.
func (a *Application) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *Application) onClose(fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

func (a *Application) buildFetcher(ctx context.Context) (*fetcher.Service, error) {
	fc := a.cfg.Fetcher

	client, err := fetcher.NewHTTPClient(fc.Timeout, fc.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("build fetcher: %w", err)
	}

	registry := scanner.NewRegistry()
	registry.Register(fetcher.NewHTMLStrategy(client, fc.UserAgent))
	registry.Register(fetcher.NewBrowserStrategy(fetcher.BrowserOptions{
		ExecPath:  fc.Browser.ExecPath,
		WaitFor:   fc.Browser.WaitFor,
		Timeout:   fc.Browser.Timeout,
		UserAgent: fc.UserAgent,
		ProxyURL:  fc.ProxyURL,
	}))

	var articleCache ports.ArticleCache
	if fc.Cache.Address != "" {
		valkeyCache, err := cache.NewValkeyCache(ctx, fc.Cache)
		if err != nil {
			a.logger.Warn("article cache disabled", "address", fc.Cache.Address, "error", err)
		} else {
			articleCache = valkeyCache
			a.onClose(func() error { valkeyCache.Close(); return nil })
		}
	}

	return fetcher.NewService(registry, a.cfg.Sites, articleCache, a.logger.With("component", "fetcher")), nil
}

func (a *Application) sentimentLoader(client *ml.Client) modelhandle.Loader[ports.SentimentModel] {
	mc := a.cfg.Models.Sentiment
	return func(ctx context.Context) (ports.SentimentModel, error) {
		switch mc.Backend {
		case "hugot":
			clf, err := hf.NewTextClassifier("sentiment", mc.ModelPath, mc.ModelRepo)
			if err != nil {
				return nil, err
			}
			a.onClose(clf.Close)
			return hf.NewSentimentModel(clf, mc.MaxChars), nil
		case "vader":
			return sentiment.NewVaderModel(), nil
		case "http":
			return client.Sentiment(), nil
		default:
			return nil, fmt.Errorf("unknown sentiment backend %q", mc.Backend)
		}
	}
}

func (a *Application) clickbaitLoader(client *ml.Client) modelhandle.Loader[ports.ClickbaitModel] {
	mc := a.cfg.Models.Clickbait
	return func(ctx context.Context) (ports.ClickbaitModel, error) {
		switch mc.Backend {
		case "hugot":
			clf, err := hf.NewTextClassifier("clickbait", mc.ModelPath, mc.ModelRepo)
			if err != nil {
				return nil, err
			}
			a.onClose(clf.Close)
			return hf.NewClickbaitModel(clf), nil
		case "openai":
			clf, err := llm.NewClickbaitClassifier(mc.OpenAI)
			if err != nil {
				return nil, err
			}
			return clf, nil
		case "http":
			return client.Clickbait(), nil
		default:
			return nil, fmt.Errorf("unknown clickbait backend %q", mc.Backend)
		}
	}
}

func (a *Application) waterLoader(client *ml.Client) modelhandle.Loader[ports.ProbabilityModel] {
	mc := a.cfg.Models.Water
	return func(ctx context.Context) (ports.ProbabilityModel, error) {
		switch mc.Backend {
		case "logistic":
			model, err := ml.NewLogisticModel(mc.Weights, mc.Intercept)
			if err != nil {
				return nil, err
			}
			return model, nil
		case "http":
			return client.Water(), nil
		default:
			return nil, fmt.Errorf("unknown water backend %q", mc.Backend)
		}
	}
}
