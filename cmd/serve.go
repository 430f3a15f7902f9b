package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	httpHdlr "okchat/handler/http"
	"okchat/src/core/permission"
	"okchat/src/core/search"
	"okchat/src/infrastructure/events"
	"okchat/src/infrastructure/integrations/ollama"
	"okchat/src/log"
	"okchat/src/storage/minioctrl"
	"okchat/src/storage/postgres/membershipctrl"
	"okchat/src/storage/postgres/permissionctrl"
	"okchat/src/storage/postgres/userctrl"
	"okchat/src/storage/weaviate"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the retrieval API server",
	Long:  `The serve command starts an HTTP server that provides permission-filtered hybrid search over the knowledge base.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	// Initialize PostgreSQL connection
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Error(err, "Failed to connect to database")
		return
	}

	// Initialize Ollama client
	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 30 * time.Second,
	})

	// Initialize Weaviate client
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	wsdk := weaviate.NewSDK(wc, viper.GetString("search.class_name"))
	if err := wsdk.EnsureSchema(context.Background()); err != nil {
		log.Error(err, "Failed to ensure weaviate schema")
	}

	searchService, err := search.NewService(wsdk, oc, nil, viper.GetString("search.embedding_model"))
	if err != nil {
		log.Error(err, "Failed to create search service")
		return
	}

	permissionService := permission.NewService(
		userctrl.NewRepository(db),
		membershipctrl.NewRepository(db),
		permissionctrl.NewRepository(db),
	)

	// Audit events are best-effort: a missing broker disables them.
	var eventService *events.SearchEventService
	amqpConfig := amqp.NewDurableQueueConfig(viper.GetString("amqp.url"))
	publisher, err := amqp.NewPublisher(amqpConfig, watermill.NewStdLogger(false, false))
	if err != nil {
		log.Error(err, "Failed to create AMQP publisher, audit events disabled")
	} else {
		eventService = events.NewSearchEventService(publisher)
		defer publisher.Close()
	}

	// Download-link enrichment is best-effort as well.
	var minioService *minioctrl.MinioService
	ms, err := minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		false,
	)
	if err != nil {
		log.Error(err, "Failed to create MinIO client, download links disabled")
	} else {
		minioService = ms
	}

	handler := httpHdlr.NewHandler(searchService, permissionService, eventService, minioService, oc)

	// Setup gin router
	r := gin.Default()
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Get underlying *sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		log.Error(err, "Failed to get underlying *sql.DB")
	} else {
		// Close database connection
		if err := sqlDB.Close(); err != nil {
			log.Error(err, "Error closing database connection")
		}
	}

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
