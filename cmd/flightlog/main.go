package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"LaserRocket/internal/recorder"

	"github.com/ttacon/chalk"
)

func outcomeColor(outcome string) string {
	switch outcome {
	case recorder.OutcomeExploded:
		return chalk.Green.String()
	case recorder.OutcomeShotDown:
		return chalk.Red.String()
	case recorder.OutcomeInFlight:
		return chalk.Yellow.String()
	default:
		return chalk.Blue.String()
	}
}

func main() {
	dbPath := flag.String("db", "flights.db", "flight recorder database")
	room := flag.String("room", "", "only list flights from this room")
	limit := flag.Int("limit", 20, "maximum number of flights to list")
	show := flag.String("show", "", "print the samples of one flight")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("flight database %s: %v", *dbPath, err)
	}

	store, err := recorder.OpenStore(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if *show != "" {
		f, err := store.LoadFlight(*show)
		if err != nil {
			log.Fatal(err)
		}
		if f == nil {
			log.Print(chalk.Red)
			log.Println("no such flight:", *show, chalk.Reset)
			os.Exit(1)
		}
		fmt.Printf("%s%s%s %s %s room=%s %.2fs-%.2fs\n",
			outcomeColor(f.Outcome), f.Outcome, chalk.Reset, f.Class, f.Mode, f.Room, f.LaunchedAt, f.EndedAt)
		for _, s := range f.Samples {
			fmt.Printf("  t=%7.3f pos=(%8.1f %8.1f %8.1f) vel=(%7.1f %7.1f %7.1f) %-12s homing=%.3f\n",
				s.T, s.X, s.Y, s.Z, s.VX, s.VY, s.VZ, s.State, s.Homing)
		}
		return
	}

	list, err := store.ListFlights(*room, *limit)
	if err != nil {
		log.Fatal(err)
	}
	if len(list) == 0 {
		log.Print(chalk.Yellow)
		log.Println("no flights recorded", chalk.Reset)
		return
	}
	for _, f := range list {
		fmt.Printf("%s  %s%-10s%s %-16s %-6s room=%-10s %6.2fs %4d samples\n",
			f.ID, outcomeColor(f.Outcome), f.Outcome, chalk.Reset,
			f.Class, f.Mode, f.Room, f.EndedAt-f.LaunchedAt, f.SampleCount)
	}
}
