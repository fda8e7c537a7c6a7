package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spinhall/platform/internal/auth"
	"github.com/spinhall/platform/internal/bonus"
	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/handler"
	adminhandler "github.com/spinhall/platform/internal/handler/admin"
	"github.com/spinhall/platform/internal/infra"
	"github.com/spinhall/platform/internal/ledger"
	"github.com/spinhall/platform/internal/repository"
	"github.com/spinhall/platform/internal/service"
)

// RouterDeps carries the external dependencies the router needs. Everything
// else (repositories, engines, services, handlers) is wired here so main and
// the integration tests build identical stacks.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Hub    *infra.WSHub
	Logger *slog.Logger
}

// wsNotifier bridges the wallet service to the WebSocket hub.
type wsNotifier struct {
	hub *infra.WSHub
}

func (n *wsNotifier) BalanceUpdated(userID uuid.UUID, breakdown domain.BalanceBreakdown) {
	n.hub.PublishToUser(userID.String(), "balance.updated", breakdown)
}

// NewRouter wires the full HTTP stack and returns the root handler.
func NewRouter(deps RouterDeps) http.Handler {
	// Repositories
	balanceRepo := repository.NewBalanceRepository()
	grantRepo := repository.NewGrantRepository()
	promotionRepo := repository.NewPromotionRepository()
	txRepo := repository.NewTransactionRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Domain engines
	tracker := bonus.NewTracker(grantRepo, promotionRepo)
	engine := ledger.NewEngine(balanceRepo, txRepo, outboxRepo, tracker)

	var notifier service.Notifier
	if deps.Hub != nil {
		notifier = &wsNotifier{hub: deps.Hub}
	}

	// Services
	walletSvc := service.NewWalletService(deps.Pool, engine, tracker, balanceRepo, grantRepo, txRepo, notifier, deps.Logger)
	promotionSvc := service.NewPromotionService(deps.Pool, engine, tracker, promotionRepo, grantRepo, txRepo, outboxRepo, walletSvc, deps.Logger)

	// Handlers
	walletHandler := handler.NewWalletHandler(walletSvc)
	promotionHandler := handler.NewPromotionHandler(promotionSvc)
	promotionAdmin := adminhandler.NewPromotionAdminHandler(promotionSvc)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(deps.Logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(deps.Logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.Pool))

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateUser(deps.JWTMgr))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", walletHandler.GetBalance)
			r.Post("/operations", walletHandler.ApplyOperation)
			r.Post("/withdrawals", walletHandler.Withdraw)
			r.Get("/transactions", walletHandler.GetHistory)
			r.Get("/verify", walletHandler.VerifyLedger)
		})

		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", promotionHandler.ListPromotions)
			r.Post("/{id}/activate", promotionHandler.Activate)
		})

		r.Route("/bonuses/grants", func(r chi.Router) {
			r.Get("/", promotionHandler.ListGrants)
			r.Post("/{id}/cancel", promotionHandler.Cancel)
		})

		if deps.Hub != nil {
			r.Get("/ws", handler.WSHandler(deps.Hub))
		}
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(deps.JWTMgr))

		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", promotionAdmin.ListPromotions)
			r.Post("/", promotionAdmin.CreatePromotion)
			r.Patch("/{id}/status", promotionAdmin.UpdatePromotionStatus)
		})
	})

	return r
}
