package common

import (
	"fmt"
	"strings"
	"time"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/money"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintSeparatorNewline prints a separator with a newline before it
func PrintSeparatorNewline(char string, width int) {
	fmt.Println("\n" + strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// BoxDetailPrefix returns the prefix for detail lines under list items
func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// ANSI color helpers for console output.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// StatusColor picks the console color for an auction status.
func StatusColor(status models.AuctionStatus) string {
	switch status {
	case models.StatusActive:
		return ColorGreen
	case models.StatusExtended:
		return ColorYellow
	case models.StatusSold:
		return ColorCyan
	case models.StatusUnsold:
		return ColorRed
	default:
		return ColorGray
	}
}

// PrintAuctions prints auctions as a box-drawn list
func PrintAuctions(auctions []models.Auction) {
	for i, a := range auctions {
		if i > 0 {
			PrintBoxSeparator(DefaultWidth)
		}
		isLast := i == len(auctions)-1
		fmt.Printf("%s%s%-8s%s %s\n", BoxPrefix(isLast), StatusColor(a.Status), a.Status, ColorReset, a.Id)

		detail := BoxDetailPrefix(isLast)
		reserve := "none"
		if a.ReservePrice != nil {
			reserve = a.ReservePrice.String()
		}
		fmt.Printf("%s  product %s | price %s %s (+%s) | reserve %s met=%t\n",
			detail, a.ProductId, a.CurrentPrice, money.Currency, a.BidIncrement, reserve, a.ReservePriceMet)
		fmt.Printf("%s  %s -> %s | bids %d | extensions %d",
			detail, a.StartDate.Format(time.RFC3339), a.EndDate.Format(time.RFC3339), a.TotalBids, a.ExtensionCount)
		if a.WinnerId != "" {
			fmt.Printf(" | winner %s", a.WinnerId)
		}
		fmt.Println()
	}
}

// PrintBids prints bids highest first, marking the winning one
func PrintBids(bids []models.Bid) {
	if len(bids) == 0 {
		fmt.Println("└  no bids")
		return
	}
	for i, b := range bids {
		marker := " "
		if b.IsWinning {
			marker = ColorGreen + "★" + ColorReset
		}
		fmt.Printf("%s%s %10s %s  %-20s %s\n",
			BoxPrefix(i == len(bids)-1), marker, b.Amount, money.Currency, b.BidderId, b.BidDate.Format(time.RFC3339))
	}
}
