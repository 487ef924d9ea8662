package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/ziadkadry99/usediagram/internal/plantuml"
)

// PlantUML renders through a PlantUML server without going over the
// public /api/svg contract.
type PlantUML struct {
	client *plantuml.Client
}

// NewPlantUML creates a PlantUML renderer backed by client.
func NewPlantUML(client *plantuml.Client) *PlantUML {
	return &PlantUML{client: client}
}

func (p *PlantUML) Kind() string { return KindPlantUML }

func (p *PlantUML) Render(ctx context.Context, source string) (*Result, error) {
	token, err := plantuml.Encode(source)
	if err != nil {
		return nil, err
	}
	svg, err := p.client.SVG(ctx, token)
	if err != nil {
		if errors.Is(err, plantuml.ErrUpstream) {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return nil, err
	}
	return &Result{Kind: KindPlantUML, Markup: string(svg)}, nil
}

// PNG fetches a PNG rendering of an encoded token.
func (p *PlantUML) PNG(ctx context.Context, token string) ([]byte, error) {
	return p.client.PNG(ctx, token)
}
