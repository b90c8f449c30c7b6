package config

// DomainConfig holds all configurable business rules and layout constants.
// It is instance-scoped so independent sessions never share tuning state.
type DomainConfig struct {
	// Hierarchy constraints
	MaxTreeDepth int

	// Tree layout
	RootCenterX       float64
	RootY             float64
	VerticalSpacing   float64
	HorizontalSpacing float64
	MinLevelWidth     float64

	// Grid allocator
	GridNodesPerRow int
	GridSpacingX    float64
	GridSpacingY    float64

	// Spiral allocator
	SpiralCenterX        float64
	SpiralCenterY        float64
	SpiralRadiusStep     float64
	SpiralAngleStep      float64 // degrees
	SpiralPadding        float64
	SpiralMaxRadiusSteps int

	// Deduplication
	DuplicateThreshold float64
	MinTokenLength     int

	// Orphan reconciliation
	FallbackRelationship string
}

// DefaultDomainConfig returns the default domain configuration.
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxTreeDepth: 6,

		RootCenterX:       400,
		RootY:             60,
		VerticalSpacing:   150,
		HorizontalSpacing: 220,
		MinLevelWidth:     220,

		GridNodesPerRow: 4,
		GridSpacingX:    250,
		GridSpacingY:    160,

		SpiralCenterX:        400,
		SpiralCenterY:        300,
		SpiralRadiusStep:     80,
		SpiralAngleStep:      15,
		SpiralPadding:        40,
		SpiralMaxRadiusSteps: 20,

		DuplicateThreshold: 0.6,
		MinTokenLength:     4,

		FallbackRelationship: "relates to",
	}
}
