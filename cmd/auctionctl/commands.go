package main

import (
	"context"
	"fmt"
	"time"

	"auction-bidding-go/internal/common"
	"auction-bidding-go/internal/config"
	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func productCommand() *cli.Command {
	return &cli.Command{
		Name:  "product",
		Usage: "Manage the product catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a product for a seller",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Product id (generated when empty)"},
					&cli.StringFlag{Name: "seller", Usage: "Seller id", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Product title", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withServices(c, func(ctx context.Context, s *common.Services) error {
						product, err := s.Auctions.RegisterProduct(ctx, models.RegisterProductRequest{
							Id:       c.String("id"),
							SellerId: c.String("seller"),
							Title:    c.String("title"),
						})
						if err != nil {
							return err
						}
						fmt.Printf("%s✓ Product %s registered for seller %s%s\n", common.ColorGreen, product.Id, product.SellerId, common.ColorReset)
						return nil
					})
				},
			},
		},
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "List a product for auction",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "product", Usage: "Product id", Required: true},
			&cli.StringFlag{Name: "seller", Usage: "Seller id", Required: true},
			&cli.StringFlag{Name: "start-price", Usage: "Starting price", Required: true},
			&cli.StringFlag{Name: "increment", Usage: "Bid increment", Value: "1.00"},
			&cli.StringFlag{Name: "reserve", Usage: "Reserve price (optional)"},
			&cli.DurationFlag{Name: "starts-in", Usage: "Delay before the auction opens"},
			&cli.DurationFlag{Name: "duration", Usage: "How long the auction runs", Value: 24 * time.Hour},
			&cli.BoolFlag{Name: "auto-extend", Usage: "Extend when bids land near the end", Value: true},
		},
		Action: func(c *cli.Context) error {
			req, err := createRequestFromFlags(c, time.Now().UTC())
			if err != nil {
				return err
			}
			return withServices(c, func(ctx context.Context, s *common.Services) error {
				auction, err := s.Auctions.CreateAuction(ctx, req)
				if err != nil {
					return err
				}
				common.PrintHeader("Auction created", common.DefaultWidth)
				common.PrintAuctions([]models.Auction{*auction})
				return nil
			})
		},
	}
}

func createRequestFromFlags(c *cli.Context, now time.Time) (models.CreateAuctionRequest, error) {
	startingPrice, err := money.Parse(c.String("start-price"))
	if err != nil {
		return models.CreateAuctionRequest{}, fmt.Errorf("start-price: %w", err)
	}
	increment, err := money.Parse(c.String("increment"))
	if err != nil {
		return models.CreateAuctionRequest{}, fmt.Errorf("increment: %w", err)
	}

	start := now.Add(c.Duration("starts-in"))
	req := models.CreateAuctionRequest{
		ProductId:         c.String("product"),
		SellerId:          c.String("seller"),
		StartingPrice:     startingPrice,
		BidIncrement:      increment,
		StartDate:         start,
		EndDate:           start.Add(c.Duration("duration")),
		AutoExtendEnabled: c.Bool("auto-extend"),
	}
	if c.IsSet("reserve") {
		reserve, err := money.Parse(c.String("reserve"))
		if err != nil {
			return models.CreateAuctionRequest{}, fmt.Errorf("reserve: %w", err)
		}
		req.ReservePrice = &reserve
	}
	return req, nil
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List auctions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "all, active, closed or pending", Value: "all"},
		},
		Action: func(c *cli.Context) error {
			return withServices(c, func(ctx context.Context, s *common.Services) error {
				auctions, err := common.SelectAuctions(ctx, s.Auctions, "", c.String("status"), zap.L())
				if err != nil {
					return err
				}
				common.PrintHeader(fmt.Sprintf("Auctions (%s): %d", c.String("status"), len(auctions)), common.DefaultWidth)
				common.PrintAuctions(auctions)
				return nil
			})
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one auction with its next minimum bid",
		ArgsUsage: "AUCTION_ID",
		Action: func(c *cli.Context) error {
			auctionId, err := requireArg(c)
			if err != nil {
				return err
			}
			return withServices(c, func(ctx context.Context, s *common.Services) error {
				auctions, err := common.SelectAuctions(ctx, s.Auctions, auctionId, "", zap.L())
				if err != nil {
					return err
				}
				common.PrintHeader("Auction "+auctionId, common.DefaultWidth)
				common.PrintAuctions(auctions)

				if auctions[0].Status.AcceptsBids() {
					next, err := s.Auctions.GetNextMinimumBid(ctx, auctionId)
					if err != nil {
						return err
					}
					fmt.Printf("\nNext minimum bid: %s %s\n", next.Minimum, next.Currency)
				}
				return nil
			})
		},
	}
}

func bidsCommand() *cli.Command {
	return &cli.Command{
		Name:      "bids",
		Usage:     "List an auction's bids, highest first",
		ArgsUsage: "AUCTION_ID",
		Action: func(c *cli.Context) error {
			auctionId, err := requireArg(c)
			if err != nil {
				return err
			}
			return withServices(c, func(ctx context.Context, s *common.Services) error {
				bids, err := s.Auctions.GetBids(ctx, auctionId)
				if err != nil {
					return err
				}
				common.PrintHeader(fmt.Sprintf("Bids on %s: %d", auctionId, len(bids)), common.DefaultWidth)
				common.PrintBids(bids)
				return nil
			})
		},
	}
}

func bidCommand() *cli.Command {
	return &cli.Command{
		Name:      "bid",
		Usage:     "Place a bid",
		ArgsUsage: "AUCTION_ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bidder", Usage: "Bidder id", Required: true},
			&cli.StringFlag{Name: "amount", Usage: "Bid amount", Required: true},
			&cli.StringFlag{Name: "max", Usage: "Maximum the bidder would pay (recorded only)"},
		},
		Action: func(c *cli.Context) error {
			auctionId, err := requireArg(c)
			if err != nil {
				return err
			}
			amount, err := money.Parse(c.String("amount"))
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			req := models.PlaceBidRequest{BidderId: c.String("bidder"), Amount: amount}
			if c.IsSet("max") {
				maxAmount, err := money.Parse(c.String("max"))
				if err != nil {
					return fmt.Errorf("max: %w", err)
				}
				req.MaxAmount = &maxAmount
			}

			return withServices(c, func(ctx context.Context, s *common.Services) error {
				outcome, err := s.Auctions.PlaceBid(ctx, auctionId, req)
				if err != nil {
					return err
				}
				fmt.Printf("%s✓ Bid %s accepted, current price %s %s%s\n",
					common.ColorGreen, outcome.Bid.Id, outcome.CurrentPrice, money.Currency, common.ColorReset)
				if outcome.Extended {
					fmt.Printf("%s~ Auction extended to %s%s\n",
						common.ColorYellow, outcome.EndDate.Format(time.RFC3339), common.ColorReset)
				}
				return nil
			})
		},
	}
}

func closeCommand() *cli.Command {
	return &cli.Command{
		Name:      "close",
		Usage:     "Close an open auction now",
		ArgsUsage: "AUCTION_ID",
		Action: func(c *cli.Context) error {
			auctionId, err := requireArg(c)
			if err != nil {
				return err
			}
			return withServices(c, func(ctx context.Context, s *common.Services) error {
				auction, err := s.Auctions.CloseAuction(ctx, auctionId)
				if err != nil {
					return err
				}
				fmt.Printf("%sAuction %s closed %s%s\n", common.StatusColor(auction.Status), auction.Id, auction.Status, common.ColorReset)
				return nil
			})
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an auction and its bids",
		ArgsUsage: "AUCTION_ID",
		Action: func(c *cli.Context) error {
			auctionId, err := requireArg(c)
			if err != nil {
				return err
			}
			return withServices(c, func(ctx context.Context, s *common.Services) error {
				if err := s.Auctions.DeleteAuction(ctx, auctionId); err != nil {
					return err
				}
				fmt.Printf("Auction %s deleted\n", auctionId)
				return nil
			})
		},
	}
}

func tickCommand() *cli.Command {
	return &cli.Command{
		Name:  "tick",
		Usage: "Run one scheduler pass: activate, close, relay order notifications",
		Action: func(c *cli.Context) error {
			return withServices(c, func(ctx context.Context, s *common.Services) error {
				result := s.Scheduler.Tick(ctx)
				delivered := s.Scheduler.RelayOrderNotifications(ctx)
				fmt.Printf("activated=%d sold=%d unsold=%d failed=%d orders_notified=%d\n",
					result.Activated, result.Sold, result.Unsold, result.Failed, delivered)
				return nil
			})
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Register products and open auctions from a listings file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "Listings YAML (default: LISTINGS_FILE)"},
		},
		Action: func(c *cli.Context) error {
			file := c.String("file")
			if file == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				file = cfg.Scheduler.ListingsFile
			}
			listings, err := common.LoadListings(file)
			if err != nil {
				return err
			}

			return withServices(c, func(ctx context.Context, s *common.Services) error {
				result, err := common.SeedListings(ctx, s.Auctions, listings, time.Now().UTC())
				if err != nil {
					return err
				}
				common.PrintFooter(fmt.Sprintf("Seeded %d auctions for %d products (%d already listed)",
					result.Auctions, result.Products, result.Skipped), common.DefaultWidth)
				return nil
			})
		},
	}
}

func requireArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one AUCTION_ID argument")
	}
	return c.Args().First(), nil
}
