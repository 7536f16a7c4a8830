// resource-sim serves synthetic gas-profile and venue-depth resources for
// local development of the advisor service.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/quantrelay/trade-advisor/internal/config"
	"github.com/quantrelay/trade-advisor/internal/ops"
	"github.com/quantrelay/trade-advisor/shared/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("RESOURCE_SIM_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/resource-sim/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateResourceSimConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ops.LoggerMiddleware(appLogger.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "resource-sim"})
	})
	r.GET("/v1/gas-profile", handleGasProfile)
	r.GET("/v1/venue-depth", handleVenueDepth)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	appLogger.Info("Resource simulator is running",
		slog.String("address", addr),
	)

	return r.Run(addr)
}

// handleGasProfile cycles congestion through a slow daily curve so the
// advisor sees every band during development.
func handleGasProfile(c *gin.Context) {
	phase := float64(time.Now().Unix()%3600) / 3600

	baseFee := 8 + 40*math.Abs(math.Sin(phase*2*math.Pi))
	level := "low"
	switch {
	case baseFee > 38:
		level = "high"
	case baseFee > 26:
		level = "elevated"
	case baseFee > 14:
		level = "moderate"
	}

	priority := 1 + baseFee/20
	maxFee := baseFee*2 + priority

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"data": gin.H{
			"congestion_level":         level,
			"base_fee_gwei":            round2(baseFee),
			"median_priority_fee_gwei": round2(priority),
			"suggested_max_fee_gwei":   round2(maxFee),
			"cost_estimates": gin.H{
				"swap_usd":     round2(baseFee * 0.35),
				"transfer_usd": round2(baseFee * 0.12),
			},
			"variance_hint": varianceHint(level),
			"request_id":    uuid.NewString(),
		},
		"freshness_seconds": 15,
	})
}

// handleVenueDepth fabricates per-venue depth deterministically from the
// pair so repeated calls are stable.
func handleVenueDepth(c *gin.Context) {
	assetIn := strings.ToUpper(c.DefaultQuery("asset_in", "USDC"))
	assetOut := strings.ToUpper(c.DefaultQuery("asset_out", "WETH"))
	notional, err := strconv.ParseFloat(c.DefaultQuery("notional_usd", "10000"), 64)
	if err != nil || notional <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "notional_usd must be a positive number",
		})
		return
	}

	seed := float64(len(assetIn)*7+len(assetOut)*13) / 20

	venues := []gin.H{
		{"venue": "uniswap_v3", "depth_usd": round2(2_400_000 * seed), "fee_bps": 5},
		{"venue": "curve", "depth_usd": round2(1_100_000 * seed), "fee_bps": 4},
		{"venue": "balancer", "depth_usd": round2(520_000 * seed), "fee_bps": 10},
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"data": gin.H{
			"pair":          assetIn + "/" + assetOut,
			"notional_usd":  notional,
			"venues":        venues,
			"best_by_depth": venues[0],
			"request_id":    uuid.NewString(),
		},
		"freshness_seconds": 30,
	})
}

func varianceHint(level string) string {
	if level == "high" || level == "elevated" {
		return "volatile"
	}
	return "stable"
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
