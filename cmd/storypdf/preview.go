package main

import (
	"context"
	"fmt"
)

// runPreviewCmd renders one story to HTML without launching a browser.
func runPreviewCmd(ctx context.Context, args []string, env *Environment) (string, error) {
	f, inputs, err := parsePreviewFlags(args)
	if err != nil {
		return "", err
	}
	switch len(inputs) {
	case 0:
		return "", ErrNoInput
	case 1:
	default:
		return "", fmt.Errorf("%w: preview takes a single story file, got %d", ErrUsage, len(inputs))
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return hintFor(err, &f.common, nil), err
	}
	mergeTemplateFlags(&f.templates, cfg)
	mergeOutputFlag(f.output, cfg)

	p, _, cleanup, err := setupPipeline(&f.common, cfg, env)
	if err != nil {
		return hintFor(err, &f.common, cfg), err
	}
	defer cleanup()

	doc, err := readStory(inputs[0], env.Stdin)
	if err != nil {
		return hintFor(err, &f.common, cfg), err
	}

	res, err := p.Preview(ctx, doc, f.out)
	if err != nil {
		return hintFor(err, &f.common, cfg), err
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", res.PreviewPath)
	}
	return "", nil
}
