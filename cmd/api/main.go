package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"printmarket/internal/adapter/api"
	"printmarket/internal/adapter/api/handler"
	apimiddleware "printmarket/internal/adapter/api/middleware"
	"printmarket/internal/adapter/api/router"
	"printmarket/internal/adapter/repository"
	"printmarket/internal/domain/service"
	"printmarket/internal/infrastructure/firebase"
	"printmarket/internal/infrastructure/websocket"
	"printmarket/internal/usecase"
	"printmarket/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	orderRepo := repository.NewFirestoreOrderRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	dealerRepo := repository.NewFirestoreDealerRepository(firestoreClient)
	batchRepo := repository.NewFirestoreBatchRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	bus := service.NewNotificationBus(notificationRepo, wsManager, cfg.NotificationCap)
	if err := bus.Start(ctx); err != nil {
		log.Fatalf("Failed to start notification bus: %v", err)
	}

	orderUseCase := usecase.NewOrderUseCase(orderRepo, dealerRepo, userRepo, batchRepo, bus)
	dealerUseCase := usecase.NewDealerUseCase(orderRepo, dealerRepo)
	chatUseCase := usecase.NewChatUseCase(orderRepo, userRepo, bus, orderUseCase)

	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	roleMiddleware := apimiddleware.NewRoleMiddleware(userRepo)

	orderHandler := handler.NewOrderHandler(orderUseCase)
	dealerHandler := handler.NewDealerHandler(orderUseCase, dealerUseCase)
	adminHandler := handler.NewAdminHandler(orderUseCase)
	notificationHandler := handler.NewNotificationHandler(bus)
	chatHandler := handler.NewChatHandler(chatUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, firebaseAuthClient, userRepo)

	router.Setup(e, authMiddleware, roleMiddleware,
		orderHandler, dealerHandler, adminHandler, notificationHandler, chatHandler, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
