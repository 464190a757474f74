package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithSearchPath sets the search path relative asset paths are resolved against.
//
// Parameters:
//   - sp: the search path
//
// Returns:
//   - LoaderBuilderOption: a function that applies the search path to a loader
func WithSearchPath(sp SearchPath) LoaderBuilderOption {
	return func(l *loader) {
		l.searchPath = sp
	}
}

// WithRoots is shorthand for WithSearchPath(NewSearchPath(roots...)).
func WithRoots(roots ...string) LoaderBuilderOption {
	return WithSearchPath(NewSearchPath(roots...))
}
