package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"unsafe"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prybar-dev/prybar/internal/filter"
	"github.com/prybar-dev/prybar/internal/trust"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check runtime compatibility and diagnose configuration issues",
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []checkResult

	// 1. Go runtime.
	checks = append(checks, checkResult{
		label:  "go runtime",
		ok:     true,
		detail: runtime.Version(),
	})

	// 2. reflect.Value header size.
	wantWords := uintptr(3)
	gotWords := unsafe.Sizeof(reflect.Value{}) / unsafe.Sizeof(uintptr(0))
	checks = append(checks, checkResult{
		label:  "reflect.Value header",
		ok:     gotWords == wantWords,
		detail: fmt.Sprintf("%d words", gotWords),
	})

	// 3. Layout probe (RO flag + write alias).
	if err := trust.Probe(); err != nil {
		checks = append(checks, checkResult{
			label:  "layout probe",
			ok:     false,
			detail: err.Error(),
			fix:    "this Go runtime is unsupported; pin a supported toolchain",
		})
	} else {
		checks = append(checks, checkResult{
			label:  "layout probe",
			ok:     true,
			detail: "read-only flag and write alias behave as expected",
		})
	}

	// 4. Filter config file.
	if path := defaultFilterConfig(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := filter.Load(path); err != nil {
				checks = append(checks, checkResult{
					label:  "filter config",
					ok:     false,
					detail: err.Error(),
					fix:    "fix the YAML or remove the file",
				})
			} else {
				checks = append(checks, checkResult{
					label:  "filter config",
					ok:     true,
					detail: path,
				})
			}
		} else {
			checks = append(checks, checkResult{
				label:  "filter config",
				ok:     true,
				detail: "not present (built-in defaults only)",
			})
		}
	}

	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	failed := 0
	for _, c := range checks {
		mark := pass("ok")
		if !c.ok {
			mark = fail("FAIL")
			failed++
		}
		fmt.Printf("%-24s %s  %s\n", c.label, mark, c.detail)
		if !c.ok && c.fix != "" {
			fmt.Printf("%-24s      fix: %s\n", "", c.fix)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func defaultFilterConfig() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".prybar", "filters.yaml")
}
