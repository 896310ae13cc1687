package cli

import (
	"fmt"

	"github.com/rvielma/cultivar"
	"github.com/rvielma/cultivar/internal/config"
	"github.com/rvielma/cultivar/internal/presentation/graph"
	"github.com/rvielma/cultivar/internal/presentation/tui"
	"github.com/rvielma/cultivar/pkg/domain"
)

// PreviewOptions carries the flags of the preview command.
type PreviewOptions struct {
	ConfigPath string
	StatePath  string
	Mermaid    bool
	Verbose    bool
}

// RunPreview resolves a path to the target and prints the context window
// the generator would see, or the sequence graph in Mermaid syntax.
func RunPreview(target string, opts PreviewOptions) error {
	pipeline, cleanup, err := buildPipeline(opts.ConfigPath, opts.Verbose, nil)
	if err != nil {
		return fmt.Errorf("error initializing pipeline: %w", err)
	}
	defer cleanup()

	state, err := loadState(opts.StatePath)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	addr, err := config.ParseAddress(target, state.EntrySequence)
	if err != nil {
		return err
	}

	if opts.Mermaid {
		return printMermaid(pipeline, state, addr)
	}

	path, found, turns, err := pipeline.Preview(state, addr)
	if err != nil {
		return err
	}

	markdown := tui.PreviewMarkdown(addr.String(), found, path, turns)
	if !isTTY() {
		fmt.Print(markdown)
		return nil
	}
	rendered, err := tui.NewRenderer()(markdown)
	if err != nil {
		fmt.Print(markdown)
		return nil
	}
	fmt.Print(rendered)
	return nil
}

func printMermaid(pipeline *cultivar.Pipeline, state domain.StateSpec, addr domain.NodeAddress) error {
	nodes, _, err := pipeline.Loader().GetSequence(addr.Sequence)
	if err != nil {
		return err
	}

	path, _, err := pipeline.Resolve(state, addr)
	if err != nil {
		return err
	}

	overlay := &graph.Overlay{Target: addr}
	for _, node := range path {
		overlay.PathNodes = append(overlay.PathNodes, node.Address())
	}

	fmt.Println(graph.Mermaid(addr.Sequence, nodes, overlay))
	return nil
}
