package cellquad

// RasterizerOption configures a Rasterizer during creation.
//
// Example:
//
//	// Default: GOMAXPROCS workers, 16-row bands
//	r := cellquad.NewRasterizer(800, 600)
//
//	// Single-threaded, useful for deterministic profiling
//	r := cellquad.NewRasterizer(800, 600, cellquad.WithWorkers(1))
type RasterizerOption func(*rasterizerOptions)

// rasterizerOptions holds optional configuration for Rasterizer creation.
type rasterizerOptions struct {
	workers    int
	bandHeight int
}

// defaultRasterizerOptions returns the default rasterizer options.
func defaultRasterizerOptions() rasterizerOptions {
	return rasterizerOptions{
		workers:    0, // GOMAXPROCS
		bandHeight: 16,
	}
}

// WithWorkers sets the number of goroutines shading fragments.
// Zero or a negative value selects GOMAXPROCS.
func WithWorkers(n int) RasterizerOption {
	return func(o *rasterizerOptions) {
		o.workers = n
	}
}

// WithBandHeight sets how many canvas rows one unit of parallel work
// covers. Values below 1 are ignored.
func WithBandHeight(rows int) RasterizerOption {
	return func(o *rasterizerOptions) {
		if rows >= 1 {
			o.bandHeight = rows
		}
	}
}
