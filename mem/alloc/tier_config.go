package alloc

// TierConfig bundles the parameters of a tier allocator.
type TierConfig struct {
	// Name for this configuration (for reporting)
	Name string

	MaxAllocation int     // largest request served; power of two
	MinAllocation int     // smallest slot size; power of two >= pointer size
	Granularity   int     // tiers per octave is Granularity/2; power of two >= 2
	TierSlotDecay float32 // in (0, 1]; lower values give small tiers more slots

	// MaxAlignment is the buffer alignment. Slots of a tier are aligned to
	// min(MaxAlignment, lowest set bit of AllocationSize). 0 selects mem.DefaultAlignment.
	MaxAlignment int

	PageBacked bool
	Prefault   bool
}

// Predefined configurations.
var (
	// Small: 16 B to 4 KiB requests, about 50 KiB of backing memory.
	TierConfigSmall = TierConfig{
		Name:          "Small",
		MaxAllocation: 4 << 10,
		MinAllocation: 16,
		Granularity:   4,
		TierSlotDecay: 0.9,
		MaxAlignment:  64,
	}

	// Default: 32 B to 64 KiB requests, a little under 1 MiB of backing memory.
	TierConfigDefault = TierConfig{
		Name:          "Default",
		MaxAllocation: 64 << 10,
		MinAllocation: 32,
		Granularity:   4,
		TierSlotDecay: 0.9,
		MaxAlignment:  64,
	}

	// Large: 64 B to 1 MiB requests, about 13 MiB of page-backed memory.
	TierConfigLarge = TierConfig{
		Name:          "Large",
		MaxAllocation: 1 << 20,
		MinAllocation: 64,
		Granularity:   4,
		TierSlotDecay: 0.9,
		MaxAlignment:  4096,
		PageBacked:    true,
	}
)

// TierConfigs lists the presets by name.
var TierConfigs = map[string]TierConfig{
	"small":   TierConfigSmall,
	"default": TierConfigDefault,
	"large":   TierConfigLarge,
}

// Description computes the tier layout for the configuration.
func (c TierConfig) Description() (Description, error) {
	return CreateDescription(c.MaxAllocation, c.MinAllocation, c.Granularity, c.TierSlotDecay)
}
