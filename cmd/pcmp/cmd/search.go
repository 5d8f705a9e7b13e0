package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/price-compare/internal/present"
	"github.com/donaldgifford/price-compare/internal/session"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

type searchFlags struct {
	min, max  float64
	retailers []string
	sortBy    string
	order     string
	inStock   bool
	noSave    bool
}

func searchCmd() *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search products across retailers",
		Example: `  pcmp search "أرز مصري"
  pcmp search rice --lang en --in-stock --sort price
  pcmp search زيت --max 120 --retailer Carrefour --retailer Spinneys`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], &f)
		},
	}

	cmd.Flags().Float64Var(&f.min, "min", 0, "minimum price (default: lowest result)")
	cmd.Flags().Float64Var(&f.max, "max", 0, "maximum price (default: highest result)")
	cmd.Flags().StringSliceVar(&f.retailers, "retailer", nil, "only show these retailers (repeatable)")
	cmd.Flags().StringVar(&f.sortBy, "sort", string(domain.SortByPrice), "sort by: price, retailer, availability")
	cmd.Flags().StringVar(&f.order, "order", string(domain.SortAsc), "sort order: asc, desc")
	cmd.Flags().BoolVar(&f.inStock, "in-stock", false, "only show offers in stock")
	cmd.Flags().BoolVar(&f.noSave, "no-history", false, "do not record the query in recent searches")

	return cmd
}

// runSearch seeds the criteria from the flags before searching, so the
// chosen price bounds and retailers reach the backend as hints. Bounds not
// given on the command line come from the results.
func runSearch(cmd *cobra.Command, query string, f *searchFlags) error {
	lang := language()
	flags := cmd.Flags()

	var lo, hi *float64
	if flags.Changed("min") {
		lo = &f.min
	}
	if flags.Changed("max") {
		hi = &f.max
	}

	opts := []session.Option{
		session.WithLanguage(lang),
		session.WithPriceRange(lo, hi),
	}
	if !f.noSave {
		opts = append(opts, session.WithHistory(newHistory()))
	}
	s := session.New(newClient(), opts...)

	s.UpdateCriteria(func(c *domain.Criteria) {
		if len(f.retailers) > 0 {
			c.SelectedRetailers = f.retailers
		}
		c.SortBy = domain.SortBy(f.sortBy)
		c.SortOrder = domain.SortOrder(f.order)
		c.AvailableOnly = f.inStock
	})

	if err := s.Search(cmd.Context(), query); err != nil {
		msg := present.Describe(err, lang)
		if jsonOutput() {
			if jerr := outputJSON(cmd.OutOrStdout(), msg); jerr != nil {
				return jerr
			}
		} else if perr := printMessage(cmd.ErrOrStderr(), &msg); perr != nil {
			return perr
		}
		return fmt.Errorf("search failed: %w", err)
	}

	v := s.View()
	if jsonOutput() {
		return outputJSON(cmd.OutOrStdout(), v)
	}
	return printView(cmd.OutOrStdout(), &v)
}
