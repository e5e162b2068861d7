package config

import (
	"errors"
	"fmt"
)

// configBuilder assembles the structured tree. Sources are applied in call
// order, later ones overriding earlier keys. Errors are collected rather than
// short-circuiting so one build reports every malformed source at once.
type configBuilder struct {
	tree    *Tree
	reader  *sourceReader
	format  Format
	reports []SourceReport
	err     error
}

func newConfigBuilder(reader *sourceReader, format Format) *configBuilder {
	return &configBuilder{
		tree:    newTree(),
		reader:  reader,
		format:  format,
		reports: make([]SourceReport, 0, 8),
	}
}

func (b *configBuilder) build() (*Tree, []SourceReport, error) {
	if b.err != nil {
		return nil, b.reports, fmt.Errorf("error occurred during building config: %w", b.err)
	}

	return b.tree, b.reports, nil
}

func (b *configBuilder) withFile(src source) *configBuilder {
	data, report, err := b.reader.read(src)
	b.reports = append(b.reports, report)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	if report.Status != StatusLoaded {
		return b
	}

	if err := checkEncoding(report.Path, data); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	values, err := b.format.parse(data)
	if err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("%w: %s: %w", ErrMalformedSource, report.Path, err))
		return b
	}

	b.tree.merge(normalize(values).(map[string]any))
	return b
}

func (b *configBuilder) withFiles(srcs []source) *configBuilder {
	for _, src := range srcs {
		b.withFile(src)
	}
	return b
}

func (b *configBuilder) withEnv(src envSource, vars []string) *configBuilder {
	b.tree.merge(src.collect(vars))
	b.reports = append(b.reports, SourceReport{Name: "environment", Status: StatusLoaded})
	return b
}
