// cmd/tools/trip-planner/main.go
//
// Interactive command line trip planner. Resolves the source and
// destination with a terminal prompt for ambiguous queries, then runs a
// cab search and prints the available options.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cabs-workers/internal/booking"
	"cabs-workers/internal/common/config"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/location"
)

// stdinPrompter collects disambiguation answers from the terminal.
type stdinPrompter struct {
	in *bufio.Reader
}

func (p *stdinPrompter) Choose(ctx context.Context, d *location.Disambiguation) (int, error) {
	fmt.Println()
	fmt.Println(d.Message)
	fmt.Print("> ")

	line, err := p.readLine(ctx)
	if err != nil {
		return 0, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" || answer == "none" || answer == "0" {
		return 0, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (p *stdinPrompter) Refine(ctx context.Context, role location.Role) (string, error) {
	fmt.Printf("Enter a more specific %s location: ", role)
	return p.readLine(ctx)
}

// readLine reads one line in a goroutine so a context timeout is honored
// even while stdin blocks.
func (p *stdinPrompter) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewNoOpLogger()
	in := bufio.NewReader(os.Stdin)

	resolver := location.NewResolver(
		location.NewPlacesClient(location.PlacesConfig{
			BaseURL: cfg.APIs.Places.BaseURL,
			APIKey:  cfg.APIs.Places.APIKey,
			Types:   cfg.APIs.Places.Types,
			Timeout: config.GetDuration(cfg.APIs.Places.Timeout),
		}, log),
		location.NewDetailsClient(location.DetailsConfig{
			BaseURL: cfg.APIs.LocationDetails.BaseURL,
			Timeout: config.GetDuration(cfg.APIs.LocationDetails.Timeout),
		}, log),
		location.Prompt{
			Prompter: &stdinPrompter{in: in},
			Timeout:  cfg.Resolution.ChoiceTimeoutDuration(),
		},
		cfg.Resolution.MaxAttempts,
		log,
	)

	cabs := booking.NewClient(booking.ClientConfig{
		SearchURL: cfg.APIs.Cabs.SearchURL,
		HoldURL:   cfg.APIs.Cabs.HoldURL,
		Timeout:   config.GetDuration(cfg.APIs.Cabs.Timeout),
	}, log)

	ctx := context.Background()

	source := resolveOrExit(ctx, resolver, in, location.RoleSource)
	destination := resolveOrExit(ctx, resolver, in, location.RoleDestination)

	pickupMs := readPickupTime(in)

	fmt.Println("\nSearching for cabs...")
	result, err := cabs.Search(ctx, source, destination, pickupMs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(searchSummary(result))
	if len(result.Cabs) == 0 {
		fmt.Println("No cabs available for this trip.")
		return
	}
	for i, cab := range result.Cabs {
		fmt.Println(cabLine(i+1, cab))
	}
}

func searchSummary(result *booking.SearchResult) string {
	return fmt.Sprintf("Search %s: %.1f km, about %.0f min",
		result.SearchID, result.TotalDistanceKm, result.TotalDurationMin)
}

func cabLine(number int, cab booking.Cab) string {
	return fmt.Sprintf("%d. %s %s, %d seats, %.0f %s (cab %s)",
		number, cab.Category, cab.Model, cab.Seats, cab.Fare, cab.Currency, cab.CabID)
}

func resolveOrExit(ctx context.Context, resolver *location.Resolver, in *bufio.Reader, role location.Role) *location.Location {
	fmt.Printf("Enter %s location: ", role)
	line, err := in.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
		os.Exit(1)
	}

	outcome := resolver.Resolve(ctx, location.Query{
		Text: strings.TrimSpace(line),
		Role: role,
	})
	if outcome.Status != location.StatusResolved {
		if outcome.Err != nil {
			fmt.Fprintf(os.Stderr, "could not resolve %s: %s\n", role, outcome.Err.Message)
		} else {
			fmt.Fprintf(os.Stderr, "could not resolve %s\n", role)
		}
		os.Exit(1)
	}

	fmt.Printf("Resolved %s: %s\n", role, outcome.Location.Address)
	return outcome.Location
}

func readPickupTime(in *bufio.Reader) int64 {
	for {
		fmt.Print("Pickup date (dd-MM-yyyy): ")
		date, _ := in.ReadString('\n')
		fmt.Print("Pickup time (HH:MM or h:MM AM/PM): ")
		tm, _ := in.ReadString('\n')

		ms, err := booking.ParsePickupTime(strings.TrimSpace(date), strings.TrimSpace(tm))
		if err == nil {
			return ms
		}
		fmt.Println("Could not parse that pickup time, try again.")
	}
}
