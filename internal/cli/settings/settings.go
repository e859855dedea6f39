package settings

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/utils"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	ctx.Println("Planner Settings:")
	ctx.Printf("  Daily Target:      %s\n", cli.FormatMinutes(settings.DailyTargetMin))
	ctx.Printf("  Min Allocation:    %s\n", cli.FormatMinutes(settings.MinAllocationMin))
	ctx.Printf("  Default Chunk:     %s\n", cli.FormatMinutes(settings.DefaultChunkMin))
	ctx.Printf("  Window Days:       %d\n", settings.WindowDays)
	ctx.Printf("  Timezone:          %s\n", settings.Timezone)

	svc := ctx.Services
	ctx.Println("\nServices:")
	if svc.API.BaseURL != "" {
		ctx.Printf("  Task Service:      %s (%.1f req/s)\n", svc.API.BaseURL, svc.API.RequestsPerSecond)
	} else {
		ctx.Printf("  Storage:           %s\n", ctx.Store.GetConfigPath())
	}
	ctx.Printf("  AI Service:        %s\n", svc.AI.BaseURL)
	ctx.Printf("  AI Model:          %s (num_ctx %d)\n", svc.AI.Model, svc.AI.NumCtx)
	return nil
}

type SettingsSetCmd struct {
	DailyTarget   *int    `help:"Soft per-day budget for floating work, in minutes."`
	MinAllocation *int    `help:"Smallest chunk offered on a full day, in minutes."`
	DefaultChunk  *int    `help:"Chunk size when a task sets none, in minutes."`
	WindowDays    *int    `help:"Days shown by 'plan' and the TUI."`
	Timezone      *string `help:"IANA timezone name, or Local."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	positive := func(name string, v *int, dst *int) error {
		if v == nil {
			return nil
		}
		if *v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
		*dst = *v
		updated = true
		return nil
	}
	if err := positive("daily target", c.DailyTarget, &settings.DailyTargetMin); err != nil {
		return err
	}
	if err := positive("min allocation", c.MinAllocation, &settings.MinAllocationMin); err != nil {
		return err
	}
	if err := positive("default chunk", c.DefaultChunk, &settings.DefaultChunkMin); err != nil {
		return err
	}
	if err := positive("window days", c.WindowDays, &settings.WindowDays); err != nil {
		return err
	}
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use 'settings show' to view settings or flags to update them.")
		return nil
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
