package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/mem/alloc"
)

type tiersOptions struct {
	preset      string
	max         int
	min         int
	granularity int
	decay       float32
	alignment   int
	lookup      []int
}

var tiersOpts tiersOptions

func init() {
	cmd := newTiersCmd()
	f := cmd.Flags()
	f.StringVar(&tiersOpts.preset, "preset", "default", "Start from a preset ("+strings.Join(presetNames(), ", ")+")")
	f.IntVar(&tiersOpts.max, "max", 0, "Largest allocation size (power of two)")
	f.IntVar(&tiersOpts.min, "min", 0, "Smallest allocation size (power of two)")
	f.IntVar(&tiersOpts.granularity, "granularity", 0, "Tiers per octave times two (power of two)")
	f.Float32Var(&tiersOpts.decay, "decay", 0, "Tier slot decay in (0, 1]")
	f.IntVar(&tiersOpts.alignment, "align", 0, "Maximum buffer alignment")
	f.IntSliceVar(&tiersOpts.lookup, "lookup", nil, "Show which tier serves each size")
	rootCmd.AddCommand(cmd)
}

func newTiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Show the tier layout for a parameter set",
		Long: `The tiers command computes a tier allocator description and prints
each tier's allocation size, slot count, byte range and alignment.

Flags override the chosen preset.

Example:
  memctl tiers --preset small
  memctl tiers --max 512 --min 32 --granularity 4 --decay 0.9
  memctl tiers --lookup 24,100,700 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTiers(tiersOpts)
		},
	}
}

func presetNames() []string {
	names := make([]string, 0, len(alloc.TierConfigs))
	for name := range alloc.TierConfigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TierRow is one line of tier output.
type TierRow struct {
	Index          int `json:"index"`
	AllocationSize int `json:"allocation_size"`
	Slots          int `json:"slots"`
	Offset         int `json:"offset"`
	Size           int `json:"size"`
	Alignment      int `json:"alignment"`
}

// TierReport is the JSON form of the tiers command.
type TierReport struct {
	Config     alloc.TierConfig `json:"config"`
	BufferSize int              `json:"buffer_size"`
	Tiers      []TierRow        `json:"tiers"`
	Lookup     map[int]int      `json:"lookup,omitempty"`
}

func resolveTierConfig(o tiersOptions) (alloc.TierConfig, error) {
	cfg, ok := alloc.TierConfigs[o.preset]
	if !ok {
		return alloc.TierConfig{}, fmt.Errorf("unknown preset %q (want one of %s)", o.preset, strings.Join(presetNames(), ", "))
	}
	if o.max != 0 {
		cfg.MaxAllocation = o.max
	}
	if o.min != 0 {
		cfg.MinAllocation = o.min
	}
	if o.granularity != 0 {
		cfg.Granularity = o.granularity
	}
	if o.decay != 0 {
		cfg.TierSlotDecay = o.decay
	}
	if o.alignment != 0 {
		cfg.MaxAlignment = o.alignment
	}
	if o.max != 0 || o.min != 0 || o.granularity != 0 || o.decay != 0 {
		cfg.Name = "custom"
	}
	return cfg, nil
}

func buildTierReport(o tiersOptions) (TierReport, error) {
	cfg, err := resolveTierConfig(o)
	if err != nil {
		return TierReport{}, err
	}
	desc, err := cfg.Description()
	if err != nil {
		return TierReport{}, fmt.Errorf("invalid tier parameters: %w", err)
	}
	align := cfg.MaxAlignment
	if align == 0 {
		align = 16
	}

	report := TierReport{Config: cfg, BufferSize: desc.BufferSize}
	offset := 0
	for i, info := range desc.Tiers {
		report.Tiers = append(report.Tiers, TierRow{
			Index:          i,
			AllocationSize: info.AllocationSize,
			Slots:          info.Slots,
			Offset:         offset,
			Size:           info.Size,
			Alignment:      desc.TierAlignment(i, align),
		})
		offset += info.Size
	}
	if len(o.lookup) > 0 {
		report.Lookup = make(map[int]int, len(o.lookup))
		for _, size := range o.lookup {
			report.Lookup[size] = desc.TierIndex(size)
		}
	}
	return report, nil
}

func runTiers(o tiersOptions) error {
	report, err := buildTierReport(o)
	if err != nil {
		return err
	}
	printVerbose("Computed %d tiers for %s\n", len(report.Tiers), report.Config.Name)

	if jsonOut {
		return printJSON(report)
	}

	cfg := report.Config
	printInfo("\nTier layout: %s\n", cfg.Name)
	printInfo("%s\n\n", strings.Repeat("=", 40))
	printInfo("  Max allocation: %d\n", cfg.MaxAllocation)
	printInfo("  Min allocation: %d\n", cfg.MinAllocation)
	printInfo("  Granularity:    %d\n", cfg.Granularity)
	printInfo("  Slot decay:     %.2f\n", cfg.TierSlotDecay)
	printInfo("  Buffer size:    %s (%s bytes)\n\n", formatBytes(int64(report.BufferSize)), formatNumber(int64(report.BufferSize)))

	printInfo("  %5s  %10s  %8s  %12s  %12s  %6s\n", "TIER", "ALLOC", "SLOTS", "OFFSET", "SIZE", "ALIGN")
	for _, row := range report.Tiers {
		printInfo("  %5d  %10d  %8d  %12d  %12d  %6d\n",
			row.Index, row.AllocationSize, row.Slots, row.Offset, row.Size, row.Alignment)
	}

	if len(o.lookup) > 0 {
		printInfo("\nLookup:\n")
		for _, size := range o.lookup {
			idx := report.Lookup[size]
			if idx < 0 {
				printInfo("  %d bytes: too large\n", size)
				continue
			}
			printInfo("  %d bytes: tier %d (%d-byte slots)\n", size, idx, report.Tiers[idx].AllocationSize)
		}
	}
	return nil
}
