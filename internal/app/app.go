package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/unipay/internal/config"
	"github.com/fsdevblog/unipay/internal/notify"
	"github.com/fsdevblog/unipay/internal/repository/pgrepo"
	"github.com/fsdevblog/unipay/internal/repository/repoargs"
	"github.com/fsdevblog/unipay/internal/service"
	"github.com/fsdevblog/unipay/internal/storage"
	"github.com/fsdevblog/unipay/internal/sweeper"
	"github.com/fsdevblog/unipay/internal/transport/api"
	"github.com/fsdevblog/unipay/pkg/uow"

	"github.com/jackc/pgx/v5/pgxpool"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %+v", a.Config)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	var notifier service.NotificationEmitter = notify.NewNoopEmitter()
	if a.Config.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookEmitter(a.Config.NotifyWebhookURL, a.Logger)
	}

	services, sErr := service.Factory(unitOfWork, service.FactoryArgs{
		Notifier:   notifier,
		OrderTTL:   a.Config.OrderTTL,
		PaymentTTL: a.Config.PaymentTTL,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	proofStore, storeErr := storage.NewDiskStore(a.Config.ProofDir)
	if storeErr != nil {
		return fmt.Errorf("app run: %s", storeErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:         a.Logger,
		PaymentService: services.PaymentService,
		OrderService:   services.OrderService,
		ProofStore:     proofStore,
		JWTSecretKey:   []byte(a.Config.JWTUserSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	expSweeper := sweeper.New(services.PaymentService, services.OrderService, a.Logger).
		SetInterval(a.Config.SweepInterval)

	go expSweeper.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	// order repo
	orderRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewOrderRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.OrderRepoName), orderRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// payment repo
	paymentRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewPaymentRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.PaymentRepoName), paymentRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// bank qr repo
	bankQRRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewBankQRRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.BankQRRepoName), bankQRRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	return unitOfWork, nil
}
