// Package presets is the recipe library: named token conversions and
// liquidity flows assembled from actions, plus the Pipeline loading step
// and the transfer-back rule every recipe shares.
//
// Routing is a static table. Each named recipe is a fixed list of hops run
// inside one pipe, with each hop's input pasted from the previous hop's
// return data. Recipes perform no I/O when built.
package presets

import (
	"errors"
	"fmt"
	"sort"

	farm "github.com/branched-services/go-farm"
	"github.com/branched-services/go-farm/actions"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// Sentinel errors for recipe construction.
var (
	// ErrUnknownRecipe indicates a recipe name is not in the library.
	ErrUnknownRecipe = errors.New("presets: unknown recipe")

	// ErrEmptyRoute indicates a recipe was built with no hops.
	ErrEmptyRoute = errors.New("presets: recipe has no hops")

	// ErrPermitMode indicates a permit was supplied for a source balance
	// other than the external wallet.
	ErrPermitMode = errors.New("presets: permits require an external source balance")

	// ErrTokenNotInWell indicates a well recipe names a token the well does not pair.
	ErrTokenNotInWell = errors.New("presets: token not in well")

	// ErrEmptyWell indicates a well recipe was given a well with no tokens.
	ErrEmptyWell = errors.New("presets: well has no tokens")
)

// ActionBuilder assembles a recipe for the given source and destination
// balance modes.
type ActionBuilder func(from, to farm.BalanceMode) (farm.Step, error)

// Library builds recipes against one deployment.
type Library struct {
	d         Deployment
	beanstalk *farm.Contract
	tricrypto *farm.Contract
	bean3crv  *farm.Contract
	pool3     *farm.Contract
	router    *farm.Contract
	quoter    *farm.Contract
	beanWeth  *actions.Well
	routes    map[string][]hop
}

// New creates a Library for d.
func New(d Deployment) *Library {
	if d.UniswapFee == 0 {
		d.UniswapFee = DefaultUniswapFee
	}
	l := &Library{
		d:         d,
		beanstalk: actions.Beanstalk(d.Addresses.Beanstalk),
		tricrypto: actions.CurveCryptoPool(d.Addresses.Tricrypto2, "tricrypto2"),
		bean3crv:  actions.CurveStablePool(d.Addresses.Bean3Crv, "bean3crv"),
		pool3:     actions.CurveStablePool(d.Addresses.Pool3, "3pool"),
		router:    actions.UniswapV3Router(d.Addresses.UniswapV3Router),
		quoter:    actions.UniswapV3Quoter(d.Addresses.UniswapV3Quoter),
		beanWeth:  actions.NewWell(d.Addresses.BeanWethWell, d.Tokens.BEANWETH.Symbol, d.Tokens.BEAN, d.Tokens.WETH),
	}
	l.routes = l.table()
	return l
}

// Deployment returns the deployment the library was built for.
func (l *Library) Deployment() Deployment {
	return l.d
}

// Beanstalk returns the farm contract.
func (l *Library) Beanstalk() *farm.Contract {
	return l.beanstalk
}

// BeanWethWell returns the BEAN:WETH well.
func (l *Library) BeanWethWell() *actions.Well {
	return l.beanWeth
}

// Recipes returns the names of the routed recipes, sorted.
func (l *Library) Recipes() []string {
	names := lo.Keys(l.routes)
	sort.Strings(names)
	return names
}

// Recipe returns the named recipe.
func (l *Library) Recipe(name string) (ActionBuilder, error) {
	return l.Permitted(name, nil)
}

// Permitted returns the named recipe with permit authorising the initial
// load from the account's wallet.
func (l *Library) Permitted(name string, permit actions.PermitSource) (ActionBuilder, error) {
	route, ok := l.routes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
	return l.builder(name, route, permit), nil
}

// RecipeTokens returns the token the named recipe consumes and the token it
// produces.
func (l *Library) RecipeTokens(name string) (in, out farm.Token, err error) {
	route, ok := l.routes[name]
	if !ok {
		return farm.Token{}, farm.Token{}, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
	return route[0].in, route[len(route)-1].out, nil
}

func (l *Library) builder(name string, route []hop, permit actions.PermitSource) ActionBuilder {
	return func(from, to farm.BalanceMode) (farm.Step, error) {
		return l.compose(name, route, from, to, permit)
	}
}

// LoadPipeline moves token from the account's from balance into Pipeline,
// optionally preceded by a permit. Native tokens and in-transit balances
// need no load and yield an empty sequence.
func (l *Library) LoadPipeline(token farm.Token, from farm.BalanceMode, permit actions.PermitSource) (farm.Sequence, error) {
	return l.load("loadPipeline", token, from, l.d.Addresses.Pipeline, permit)
}

func (l *Library) load(scope string, token farm.Token, from farm.BalanceMode, dest common.Address, permit actions.PermitSource) (farm.Sequence, error) {
	if permit != nil && from != farm.External {
		return nil, &farm.ConstructionError{Scope: scope, Step: "permitERC20", Err: ErrPermitMode}
	}
	if from == farm.InTransit || token.Native {
		return nil, nil
	}
	var steps farm.Sequence
	if permit != nil {
		steps = append(steps, actions.PermitERC20(l.beanstalk, token, l.d.Addresses.Beanstalk, permit))
	}
	return append(steps, actions.TransferToken(l.beanstalk, token, farm.Fixed(dest), from, farm.External)), nil
}
