package main

import (
	"log"

	"github.com/freightdesk/invoicing-service/internal/config"
	"github.com/freightdesk/invoicing-service/internal/database"
	"github.com/freightdesk/invoicing-service/internal/exchange"
	"github.com/freightdesk/invoicing-service/internal/handler"
	"github.com/freightdesk/invoicing-service/internal/logger"
	"github.com/freightdesk/invoicing-service/internal/repository"
	"github.com/freightdesk/invoicing-service/internal/sequence"
	"github.com/freightdesk/invoicing-service/internal/server"
	"github.com/freightdesk/invoicing-service/internal/service"
	"github.com/freightdesk/invoicing-service/internal/view"
)

// @title FreightDesk Invoicing Service API
// @version 1.0
// @description Invoice numbering, correction and financial computation service for freight operations.
// @BasePath /
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.NewPostgresDB(cfg.PostgresDBURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	invoiceRepo := repository.NewPostgresInvoiceRepository(db)
	orderRepo := repository.NewPostgresOrderRepository(db)
	allocator := sequence.NewPostgresAllocator(db)
	rateClient := exchange.NewClient(cfg.ExchangeRateBaseURL, cfg.ExchangeRateTimeout, appLogger)

	invoiceService := service.NewInvoiceService(invoiceRepo, orderRepo, allocator, rateClient, service.Options{
		DomesticCountry:            cfg.DomesticCountry,
		StandardVatRate:            cfg.StandardVatRate,
		DefaultPaymentMethod:       cfg.DefaultPaymentMethod,
		DefaultPaymentDeadlineDays: cfg.DefaultPaymentDeadlineDays,
	}, appLogger)

	assembler := view.NewAssembler(view.Seller{
		Name:        cfg.Seller.Name,
		Address:     cfg.Seller.Address,
		TaxID:       cfg.Seller.TaxID,
		BankName:    cfg.Seller.BankName,
		BankAccount: cfg.Seller.BankAccount,
		Email:       cfg.Seller.Email,
		Phone:       cfg.Seller.Phone,
	}, invoiceService, rateClient, appLogger)

	appServer := server.NewServer(cfg, appLogger)

	invoiceHandler := handler.NewInvoiceHandler(invoiceService, assembler)
	invoiceHandler.RegisterRoutes(appServer.GetRouter())

	ratesHandler := handler.NewRatesHandler(invoiceService)
	ratesHandler.RegisterRoutes(appServer.GetRouter())

	if err := appServer.Start(); err != nil {
		appLogger.Fatal().Err(err).Msg("server error")
	}
}
