package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/vapix/internal/logging"
	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/vapix"
)

func newParamsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Read and update device parameters",
		Long: `Read and update parameters through the legacy parameter API (param.cgi).

Parameter names are dotted paths such as Network.HTTPPort. The leading
"root." may be given or left out.`,
	}
	cmd.AddCommand(newParamsListCmd(a), newParamsDefinitionsCmd(a), newParamsSetCmd(a))
	return cmd
}

func newParamsListCmd(a *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "list [GROUP...]",
		Short: "List parameter values",
		Example: `  # Every parameter
  vapixctl params list --device lobby

  # Selected groups, one key=value per line
  vapixctl params list --device lobby Brand Network --plain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}

			params, err := t.Client.Parameters().List(cmd.Context(), args...)
			if err != nil {
				return err
			}

			if plain {
				for _, key := range params.Keys() {
					p.Printf("%s=%s\n", key, params[key])
				}
				return nil
			}

			p.PrintHeader("Parameters", "vapixctl params list", deviceField(t),
				ui.Field{Key: "Groups", Value: groupsLabel(args)})
			table := ui.NewTable("PARAMETER", "VALUE")
			for _, key := range params.Keys() {
				table.AddRow(key, params[key])
			}
			p.PrintTable(table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print key=value lines without styling")
	return cmd
}

func newParamsDefinitionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "definitions [GROUP...]",
		Aliases: []string{"defs"},
		Short:   "List parameter types, access levels and allowed values",
		Example: `  vapixctl params definitions --device lobby root.Image`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}

			defs, err := t.Client.Parameters().ListDefinitions(cmd.Context(), args...)
			if err != nil {
				return err
			}

			p.PrintHeader("Parameter Definitions", "vapixctl params definitions", deviceField(t),
				ui.Field{Key: "Model", Value: defs.Model},
				ui.Field{Key: "Firmware", Value: defs.FirmwareVersion},
			)

			flat := defs.Flatten()
			paths := make([]string, 0, len(flat))
			for path := range flat {
				paths = append(paths, path)
			}
			sort.Strings(paths)

			table := ui.NewTable("PARAMETER", "TYPE", "ACCESS", "VALUE")
			for _, path := range paths {
				def := flat[path]
				access := ""
				if def.SecurityLevel != nil {
					access = def.SecurityLevel.String()
				}
				table.AddRow(path, describeType(def.Type), access, def.Value)
			}
			p.PrintTable(table)
			return nil
		},
	}
}

func newParamsSetCmd(a *app) *cobra.Command {
	var (
		yes     bool
		noCheck bool
	)

	cmd := &cobra.Command{
		Use:   "set KEY=VALUE...",
		Short: "Update parameters in one request",
		Long: `Update one or more parameters in a single request.

Values are checked against the device's parameter definitions first:
unknown and read-only parameters, out of range integers and values outside
an enum are refused. Use --no-check to skip this.`,
		Example: `  vapixctl params set --device lobby Network.HTTPPort=8080
  vapixctl params set --device lobby Image.I0.Appearance.Resolution=1280x720 --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}
			params := t.Client.Parameters()

			if !noCheck {
				defs, err := params.ListDefinitions(ctx, pairGroups(pairs)...)
				switch {
				case vapix.IsUnsupported(err):
					logging.Warn("Parameter definitions unavailable, skipping checks", zap.Error(err))
				case err != nil:
					return err
				default:
					for _, pair := range pairs {
						if err := checkPair(defs, pair); err != nil {
							return err
						}
					}
				}
			}

			if !yes {
				changes := make([]string, len(pairs))
				for i, pair := range pairs {
					changes[i] = pair.Key + " = " + pair.Value
				}
				if !p.Confirm(cmd.InOrStdin(), "Update parameters on "+t.Name, changes) {
					return nil
				}
			}

			if err := params.Update(ctx, pairs...); err != nil {
				return err
			}

			details := []ui.Field{deviceField(t)}
			for _, pair := range pairs {
				details = append(details, ui.Field{Key: pair.Key, Value: pair.Value})
			}
			p.PrintSuccess("Parameters updated", details...)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&noCheck, "no-check", false, "Skip checking values against parameter definitions")
	return cmd
}

// parsePairs parses KEY=VALUE arguments. Values may contain '=' and may be
// empty.
func parsePairs(args []string) ([]vapix.Pair, error) {
	pairs := make([]vapix.Pair, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, want KEY=VALUE", arg)
		}
		pairs = append(pairs, vapix.Pair{Key: key, Value: value})
	}
	return pairs, nil
}

func withRoot(key string) string {
	if strings.HasPrefix(key, "root.") {
		return key
	}
	return "root." + key
}

// pairGroups returns the distinct parent groups of the pairs' keys.
func pairGroups(pairs []vapix.Pair) []string {
	seen := make(map[string]bool)
	var groups []string
	for _, pair := range pairs {
		key := withRoot(pair.Key)
		group := key
		if i := strings.LastIndex(key, "."); i > 0 {
			group = key[:i]
		}
		if !seen[group] {
			seen[group] = true
			groups = append(groups, group)
		}
	}
	return groups
}

// checkPair refuses values the definition says the device will reject.
func checkPair(defs *vapix.ParameterDefinitions, pair vapix.Pair) error {
	def := defs.Lookup(withRoot(pair.Key))
	if def == nil {
		return fmt.Errorf("%s: no such parameter", pair.Key)
	}
	typ := def.Type
	if typ == nil {
		return nil
	}
	if typ.ReadOnly || typ.Const {
		return fmt.Errorf("%s: parameter is read-only", pair.Key)
	}

	switch typ.Kind {
	case vapix.KindInt:
		n, err := strconv.ParseInt(pair.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", pair.Key, pair.Value)
		}
		if (typ.Min != nil && n < *typ.Min) || (typ.Max != nil && n > *typ.Max) {
			return fmt.Errorf("%s: %d is out of range %s", pair.Key, n, intRange(typ))
		}
	case vapix.KindEnum:
		if len(typ.Entries) == 0 {
			return nil
		}
		allowed := make([]string, len(typ.Entries))
		for i, e := range typ.Entries {
			if e.Value == pair.Value {
				return nil
			}
			allowed[i] = e.Value
		}
		return fmt.Errorf("%s: %q is not one of %s", pair.Key, pair.Value, strings.Join(allowed, ", "))
	case vapix.KindBool:
		if typ.TrueValue != "" && pair.Value != typ.TrueValue && pair.Value != typ.FalseValue {
			return fmt.Errorf("%s: %q must be %s or %s", pair.Key, pair.Value, typ.TrueValue, typ.FalseValue)
		}
	}

	if typ.MaxLen != nil && len(pair.Value) > *typ.MaxLen {
		return fmt.Errorf("%s: value longer than %d characters", pair.Key, *typ.MaxLen)
	}
	return nil
}

func intRange(typ *vapix.ParameterType) string {
	lo, hi := "", ""
	if typ.Min != nil {
		lo = strconv.FormatInt(*typ.Min, 10)
	}
	if typ.Max != nil {
		hi = strconv.FormatInt(*typ.Max, 10)
	}
	return lo + ".." + hi
}

// describeType renders a parameter type for the definitions table.
func describeType(typ *vapix.ParameterType) string {
	if typ == nil {
		return ""
	}

	desc := string(typ.Kind)
	if desc == "" {
		desc = "unknown"
	}
	switch typ.Kind {
	case vapix.KindInt:
		if typ.Min != nil || typ.Max != nil {
			desc += " " + intRange(typ)
		}
	case vapix.KindEnum:
		values := make([]string, len(typ.Entries))
		for i, e := range typ.Entries {
			values[i] = e.Value
		}
		desc += " {" + strings.Join(values, "|") + "}"
	case vapix.KindBool:
		if typ.TrueValue != "" {
			desc += " " + typ.TrueValue + "/" + typ.FalseValue
		}
	}

	var flags []string
	if typ.ReadOnly {
		flags = append(flags, "ro")
	}
	if typ.WriteOnly {
		flags = append(flags, "wo")
	}
	if typ.Hidden {
		flags = append(flags, "hidden")
	}
	if typ.Const {
		flags = append(flags, "const")
	}
	if len(flags) > 0 {
		desc += " (" + strings.Join(flags, ",") + ")"
	}
	return desc
}

func groupsLabel(groups []string) string {
	if len(groups) == 0 {
		return "all"
	}
	return strings.Join(groups, ", ")
}
