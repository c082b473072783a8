package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"zookeeper/internal/core"
	"zookeeper/pkg/domain"
)

// NewAnimalsCommand creates the animals command group.
func NewAnimalsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "animals",
		Short: "Query and extend the registry",
	}
	cmd.AddCommand(newAnimalsListCommand(rootOpts))
	cmd.AddCommand(newAnimalsGetCommand(rootOpts))
	cmd.AddCommand(newAnimalsAddCommand(rootOpts))
	return cmd
}

func newAnimalsListCommand(rootOpts *RootOptions) *cobra.Command {
	var criteria domain.Criteria
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List animals matching the given filters",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := rootOpts.service(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			return printAnimals(cmd.OutOrStdout(), rootOpts.Output, svc.ListAnimals(cmd.Context(), criteria))
		},
	}
	cmd.Flags().StringVar(&criteria.Name, "name", "", "exact name")
	cmd.Flags().StringVar(&criteria.Species, "species", "", "exact species")
	cmd.Flags().StringVar(&criteria.Diet, "diet", "", "exact diet")
	cmd.Flags().StringArrayVar(&criteria.PersonalityTraits, "trait", nil, "required personality trait (repeatable)")
	return cmd
}

func newAnimalsGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single animal",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := rootOpts.service(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			animal, err := svc.GetAnimal(cmd.Context(), args[0])
			if err != nil {
				return commandFailure("lookup", err)
			}
			return printAnimal(cmd.OutOrStdout(), rootOpts.Output, animal)
		},
	}
}

func newAnimalsAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		traits  []string
		payload string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate and append a new animal",
		Long: `Validate and append a new animal. Supply the fields as flags, or a
complete JSON object with --json (use - to read it from stdin).`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := rootOpts.service(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			var animal domain.Animal
			if payload != "" {
				data := []byte(payload)
				if payload == "-" {
					if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
						return err
					}
				}
				animal, err = svc.CreateAnimalJSON(cmd.Context(), data)
			} else {
				var parsed domain.NewAnimal
				if parsed, err = domain.ParseAnimal(flagCandidate(cmd, traits)); err == nil {
					animal, err = svc.CreateAnimal(cmd.Context(), parsed)
				}
			}
			if err != nil {
				return commandFailure("The animal is not properly formatted.", err)
			}
			return printAnimal(cmd.OutOrStdout(), rootOpts.Output, animal)
		},
	}
	cmd.Flags().String(domain.DimensionName, "", "animal name")
	cmd.Flags().String(domain.DimensionSpecies, "", "animal species")
	cmd.Flags().String(domain.DimensionDiet, "", "animal diet")
	cmd.Flags().StringArrayVar(&traits, "trait", nil, "personality trait (repeatable)")
	cmd.Flags().StringVar(&payload, "json", "", "JSON animal payload, or - for stdin")
	cmd.MarkFlagsMutuallyExclusive("json", "name")
	return cmd
}

// flagCandidate collects the explicitly set field flags into a create
// payload. Unset fields stay absent so validation reports them; traits
// default to an empty list.
func flagCandidate(cmd *cobra.Command, traits []string) map[string]any {
	candidate := map[string]any{}
	for _, name := range []string{domain.DimensionName, domain.DimensionSpecies, domain.DimensionDiet} {
		if cmd.Flags().Changed(name) {
			candidate[name], _ = cmd.Flags().GetString(name)
		}
	}
	list := make([]any, 0, len(traits))
	for _, t := range traits {
		list = append(list, t)
	}
	candidate[domain.DimensionPersonalityTraits] = list
	return candidate
}

// service opens the store and wraps it in a Service using the root logger.
func (o *RootOptions) service(cmd *cobra.Command) (*core.Service, func(), error) {
	store, err := o.openStore(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	svc := core.NewService(store, core.WithLogger(o.logger))
	return svc, func() { _ = store.Close() }, nil
}

func printAnimal(w io.Writer, format string, a domain.Animal) error {
	if format == "json" {
		return encodeIndented(w, a)
	}
	return printAnimals(w, format, []domain.Animal{a})
}

func printAnimals(w io.Writer, format string, list []domain.Animal) error {
	if format == "json" {
		if list == nil {
			list = []domain.Animal{}
		}
		return encodeIndented(w, list)
	}
	for _, a := range list {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Name, a.Species, a.Diet, strings.Join(a.PersonalityTraits, ","))
		if err != nil {
			return err
		}
	}
	return nil
}

func encodeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
