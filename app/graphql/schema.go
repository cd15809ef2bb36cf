// Package graphql exposes the catalog and the cart as a GraphQL schema.
//
//	query { cart { products { id price } totalCost } }
//	mutation { reserve(id: "a") }
package graphql

import (
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/rocketcart/app/controllers"
	"github.com/shashiranjanraj/rocketcart/app/models"
	"github.com/shashiranjanraj/rocketcart/app/services"
	gqlserver "github.com/shashiranjanraj/rocketcart/pkg/graphql"
	"github.com/shashiranjanraj/rocketcart/pkg/logger"
)

// errInternal replaces any error that is not a domain error.
var errInternal = errors.New("internal server error")

type productNode struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type cartNode struct {
	Products  []productNode `json:"products"`
	TotalCost int64         `json:"totalCost"`
}

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"price":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"quantity": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var cartType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Cart",
	Fields: graphql.Fields{
		"products":  &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType)))},
		"totalCost": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var idArgs = graphql.FieldConfigArgument{
	"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
}

// NewSchema wires the resolvers to catalog and cart.
func NewSchema(catalog *services.CatalogService, cart *services.CartService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"catalogSize": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
					n, err := catalog.Count(p.Context)
					return int(n), err
				}),
			},
			"product": &graphql.Field{
				Type: productType,
				Args: idArgs,
				Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
					prod, err := catalog.Get(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return toNode(prod), nil
				}),
			},
			"available": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))),
				Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
					products, err := catalog.Available(p.Context)
					if err != nil {
						return nil, err
					}
					return toNodes(products), nil
				}),
			},
			"cart": &graphql.Field{
				Type: graphql.NewNonNull(cartType),
				Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
					contents, err := cart.Contents(p.Context)
					if err != nil {
						return nil, err
					}
					return toCart(contents), nil
				}),
			},
			"cartItem": &graphql.Field{
				Type: productType,
				Args: idArgs,
				Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
					prod, err := cart.Item(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return toNode(prod), nil
				}),
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"reserve": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: idArgs,
				Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
					if err := cart.Reserve(p.Context, p.Args["id"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
			"release": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: idArgs,
				Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
					if err := cart.Release(p.Context, p.Args["id"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},
			"checkout": &graphql.Field{
				Type: cartType,
				Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
					contents, err := cart.Checkout(p.Context)
					if err != nil {
						return nil, err
					}
					return toCart(contents), nil
				}),
			},
		},
	})

	return gqlserver.NewSchema(query, mutation)
}

// guard classifies resolver errors the way the REST layer does. Domain
// errors reach the client as is; anything else is logged and replaced.
func guard(resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		out, err := resolve(p)
		if err == nil {
			return out, nil
		}

		log := logger.WithCtx(p.Context)
		switch controllers.StatusFor(err) {
		case http.StatusInternalServerError:
			log.Error("graphql: resolver failed", "field", p.Info.FieldName, "error", err)
			return nil, errInternal
		case http.StatusServiceUnavailable:
			log.Error("cart invariant violated", "field", p.Info.FieldName, "error", err)
		}
		return nil, err
	}
}

func toNode(p models.Product) productNode {
	return productNode{ID: p.ID, Name: p.Name, Price: p.Price.IntPart(), Quantity: p.Quantity}
}

func toNodes(products []models.Product) []productNode {
	out := make([]productNode, len(products))
	for i, p := range products {
		out[i] = toNode(p)
	}
	return out
}

func toCart(c services.Contents) cartNode {
	return cartNode{Products: toNodes(c.Products), TotalCost: c.TotalCost.IntPart()}
}
