/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package main

import (
	"context"
	"fmt"
	"os"

	"auction-bidding-go/internal/common"
	"auction-bidding-go/internal/config"
	"auction-bidding-go/internal/models"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	app := &cli.App{
		Name:  "auctionctl",
		Usage: "Administer auctions, products and bids",
		Commands: []*cli.Command{
			productCommand(),
			createCommand(),
			listCommand(),
			showCommand(),
			bidsCommand(),
			bidCommand(),
			closeCommand(),
			deleteCommand(),
			tickCommand(),
			seedCommand(),
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", common.ColorRed, err, common.ColorReset)
		loggerCleanup()
		os.Exit(1)
	}
}

// withServices loads configuration, wires the services for one command and
// closes them afterwards.
func withServices(c *cli.Context, fn func(ctx context.Context, services *common.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := models.WithRequestContext(c.Context, &models.RequestContext{
		RequestId: uuid.New().String(),
		Source:    "cli",
	})

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Error("Failed to initialize services", zap.Error(err))
		return err
	}
	defer services.Close()

	return fn(ctx, services)
}
