package render

import "context"

// Request is one call to the template renderer.
type Request struct {
	// TemplateRoot is the template source directory.
	TemplateRoot string
	// Context holds the template variables.
	Context map[string]any
	// OutputDir receives the rendered project as OutputDir/<repo_name>.
	OutputDir string
	// OverwriteIfExists tolerates the renderer's own pre-existing path checks.
	OverwriteIfExists bool
	// NoInput disables interactive prompts.
	NoInput bool
}

// Renderer materializes a template into a directory.
type Renderer interface {
	Render(ctx context.Context, req Request) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, req Request) error

func (f RendererFunc) Render(ctx context.Context, req Request) error {
	return f(ctx, req)
}
