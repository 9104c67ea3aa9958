package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"nutrigenie/internal/app"
	"nutrigenie/internal/bootstrap"
	"nutrigenie/internal/config"
	"nutrigenie/internal/favorites"
	"nutrigenie/internal/profile"
	"nutrigenie/internal/render"
)

const cliSession = "cli"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	rt, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer rt.Close()

	command, args := os.Args[1], os.Args[2:]

	switch command {
	case "plan":
		cmd := flag.NewFlagSet("plan", flag.ExitOnError)
		user := cmd.String("profile", "local", "Profile whose preferences and favorites are used")
		set := preferenceFlags(cmd)
		cmd.Parse(args)

		application := login(rt.App, *user)
		if set.changed(cmd) {
			prefs := set.apply(cmd, mustPreferences(ctx, application))
			if _, err := application.SavePreferences(ctx, cliSession, prefs); err != nil {
				log.Fatalf("Saving preferences failed: %v", err)
			}
		}

		plan, err := application.GeneratePlan(ctx, cliSession, nil)
		if err != nil {
			log.Fatalf("Plan generation failed: %s", app.UserMessage(err))
		}

		saved, _ := application.Favorites(ctx, cliSession)
		favs := favorites.Titles(saved)
		fmt.Println(render.Calendar(plan, 1))
		for i := range plan.Days {
			fmt.Println(render.Day(&plan.Days[i], nil, favs))
		}
		if tip := plan.FirstTip(); tip != "" {
			fmt.Printf("Tip: %s\n", tip)
		}

	case "grocery":
		cmd := flag.NewFlagSet("grocery", flag.ExitOnError)
		user := cmd.String("profile", "local", "Profile to use")
		cmd.Parse(args)

		input := strings.Join(cmd.Args(), " ")
		if strings.TrimSpace(input) == "" {
			log.Fatalf("Usage: nutrigenie grocery [-profile name] <meals or URL>")
		}

		application := login(rt.App, *user)
		categories, err := application.BuildGroceryList(ctx, cliSession, input)
		if err != nil {
			log.Fatalf("Grocery list failed: %s", app.UserMessage(err))
		}
		fmt.Println(render.Grocery(categories))

	case "track":
		cmd := flag.NewFlagSet("track", flag.ExitOnError)
		user := cmd.String("profile", "local", "Profile whose calorie goal is used")
		cmd.Parse(args)

		application := login(rt.App, *user)
		report, err := application.TrackIntake(ctx, cliSession, strings.Join(cmd.Args(), " "))
		if err != nil {
			log.Fatalf("Intake analysis failed: %s", app.UserMessage(err))
		}
		fmt.Println(render.Analysis(report.Analysis, report.Goal))

	case "prefs":
		cmd := flag.NewFlagSet("prefs", flag.ExitOnError)
		user := cmd.String("profile", "local", "Profile to show or update")
		set := preferenceFlags(cmd)
		cmd.Parse(args)

		application := login(rt.App, *user)
		prefs := mustPreferences(ctx, application)
		if set.changed(cmd) {
			prefs, err = application.SavePreferences(ctx, cliSession, set.apply(cmd, prefs))
			if err != nil {
				log.Fatalf("Saving preferences failed: %s", app.UserMessage(err))
			}
		}
		st, _ := application.State(cliSession)
		fmt.Println(render.Profile(st.User, prefs))

	case "favorites":
		cmd := flag.NewFlagSet("favorites", flag.ExitOnError)
		user := cmd.String("profile", "local", "Profile to list")
		cmd.Parse(args)

		application := login(rt.App, *user)
		meals, err := application.Favorites(ctx, cliSession)
		if err != nil {
			log.Fatalf("Loading favorites failed: %v", err)
		}
		fmt.Println(render.Favorites(meals))

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(args)

		affected, err := rt.Metrics.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// login opens the CLI session for the given profile.
func login(application *app.App, username string) *app.App {
	if _, err := application.Login(cliSession, username, cliSession, username); err != nil {
		log.Fatalf("Invalid profile %q: %s", username, app.UserMessage(err))
	}
	return application
}

func mustPreferences(ctx context.Context, application *app.App) profile.Preferences {
	prefs, err := application.Preferences(ctx, cliSession)
	if err != nil {
		log.Fatalf("Loading preferences failed: %v", err)
	}
	return prefs
}

type prefFlags struct {
	diet      *string
	calories  *int
	meals     *int
	allergies *string
	water     *int
}

func preferenceFlags(cmd *flag.FlagSet) *prefFlags {
	return &prefFlags{
		diet:      cmd.String("diet", "", "Diet type, e.g. Vegan or Keto"),
		calories:  cmd.Int("calories", 0, "Daily calorie goal (1000-5000)"),
		meals:     cmd.Int("meals", 0, "Meals per day (2-5)"),
		allergies: cmd.String("allergies", "", "Foods to avoid"),
		water:     cmd.Int("water", 0, "Daily water goal in ml"),
	}
}

// changed reports whether any preference flag was given.
func (f *prefFlags) changed(cmd *flag.FlagSet) bool {
	found := false
	cmd.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "diet", "calories", "meals", "allergies", "water":
			found = true
		}
	})
	return found
}

// apply overrides p with the flags that were given.
func (f *prefFlags) apply(cmd *flag.FlagSet, p profile.Preferences) profile.Preferences {
	cmd.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "diet":
			p.DietType = *f.diet
		case "calories":
			p.CalorieGoal = *f.calories
		case "meals":
			p.MealsPerDay = *f.meals
		case "allergies":
			p.Allergies = *f.allergies
		case "water":
			p.WaterGoal = *f.water
		}
	})
	return p
}

func printUsage() {
	fmt.Println("Usage: nutrigenie <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Generate a weekly meal plan (-diet, -calories, -meals, -allergies)")
	fmt.Println("  grocery            Build a grocery list from meals or a recipe URL")
	fmt.Println("  track              Analyze a description of today's food")
	fmt.Println("  prefs              Show or update preferences")
	fmt.Println("  favorites          List saved meals")
	fmt.Println("  metrics-cleanup    Remove old metric records")
	fmt.Println("\nEvery command except metrics-cleanup accepts -profile <name>.")
}
