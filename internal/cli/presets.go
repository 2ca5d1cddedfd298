package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/namuan/dev-boost-sub001/internal/platform"
	"github.com/namuan/dev-boost-sub001/pkg/settings"
)

// newSettingsManager opens the settings manager rooted at the standard
// per-user config directory
func newSettingsManager() (*settings.Manager, error) {
	dir, err := platform.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config directory: %w", err)
	}
	return settings.NewManager(dir)
}

// NewPresetsCommand creates the presets command
func NewPresetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List and manage optimization presets",
		Long:  `List built-in and custom optimization presets, show their settings, or add and remove custom ones.`,
		RunE:  runPresetsList,
	}

	cmd.AddCommand(newPresetsShowCommand())
	cmd.AddCommand(newPresetsAddCommand())
	cmd.AddCommand(newPresetsRemoveCommand())

	return cmd
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	manager, err := newSettingsManager()
	if err != nil {
		return err
	}

	for _, p := range manager.Presets() {
		kind := "custom"
		if p.IsBuiltin {
			kind = "builtin"
		}
		fmt.Printf("%-20s [%s] %s\n", p.Name, kind, p.Description)
		fmt.Printf("%-20s preset=%s", "", p.Settings.QualityPreset)
		if p.Settings.MaxWidth != nil && p.Settings.MaxHeight != nil {
			fmt.Printf(" max=%dx%d", *p.Settings.MaxWidth, *p.Settings.MaxHeight)
		}
		if p.Settings.PreserveMetadata {
			fmt.Printf(" preserve-metadata")
		}
		fmt.Println()
	}
	return nil
}

func newPresetsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a preset's full settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newSettingsManager()
			if err != nil {
				return err
			}
			p, ok := manager.Preset(args[0])
			if !ok {
				return fmt.Errorf("unknown preset: %q", args[0])
			}
			data, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode preset: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newPresetsAddCommand() *cobra.Command {
	var (
		description      string
		quality          string
		maxWidth         int
		maxHeight        int
		preserveMetadata bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newSettingsManager()
			if err != nil {
				return err
			}

			s := settings.Default()
			if quality != "" {
				qp, err := settings.ParseQualityPreset(quality)
				if err != nil {
					return err
				}
				s.QualityPreset = qp
			}
			if maxWidth > 0 {
				s.MaxWidth = settings.Int(maxWidth)
			}
			if maxHeight > 0 {
				s.MaxHeight = settings.Int(maxHeight)
			}
			s.PreserveMetadata = preserveMetadata

			if errs := s.Validate(); len(errs) > 0 {
				return fmt.Errorf("invalid settings: %s", errs[0])
			}

			if err := manager.AddPreset(&settings.Preset{
				Name:        args[0],
				Description: description,
				Settings:    s,
			}); err != nil {
				return err
			}
			fmt.Printf("Preset %q added\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Preset description")
	cmd.Flags().StringVar(&quality, "quality", "", "Quality preset (maximum, high, medium, low, minimum)")
	cmd.Flags().IntVar(&maxWidth, "max-width", 0, "Maximum output width in pixels")
	cmd.Flags().IntVar(&maxHeight, "max-height", 0, "Maximum output height in pixels")
	cmd.Flags().BoolVar(&preserveMetadata, "preserve-metadata", false, "Keep image metadata")

	return cmd
}

func newPresetsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a custom preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newSettingsManager()
			if err != nil {
				return err
			}
			if err := manager.RemovePreset(args[0]); err != nil {
				return err
			}
			fmt.Printf("Preset %q removed\n", args[0])
			return nil
		},
	}
}
