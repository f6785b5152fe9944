// Command ildump disassembles the routines of a script unit, optionally with
// the gravity hooks installed.
//
//	ildump [-prefabs dir] [-patched] unit [decl...]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/milk9111/gravityhelper/gravity"
	"github.com/milk9111/gravityhelper/hook"
	"github.com/milk9111/gravityhelper/il"
	"github.com/milk9111/gravityhelper/patches"
	"github.com/milk9111/gravityhelper/prefabs"
	"github.com/milk9111/gravityhelper/script"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "ildump:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ildump", flag.ContinueOnError)
	dir := fs.String("prefabs", "", "prefab directory overriding the embedded scripts")
	patched := fs.Bool("patched", false, "install every hook before dumping")
	verbose := fs.Int("v", 0, "log verbosity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: ildump [-prefabs dir] [-patched] unit [decl...]")
	}
	commonlog.Configure(*verbose, nil)

	src := &prefabs.Source{Dir: *dir, FS: prefabs.Embedded()}
	names, err := src.Scripts()
	if err != nil {
		return err
	}
	env := script.Env{"geom": script.Geom()}
	units := make([]*script.Unit, 0, len(names))
	for _, name := range names {
		data, err := src.LoadScript(name)
		if err != nil {
			return err
		}
		u, err := script.Load(name, data, env)
		if err != nil {
			return err
		}
		units = append(units, u)
	}
	catalog := hook.NewCatalog(units...)

	if *patched {
		cfg, err := prefabs.LoadGravityConfig(src)
		if err != nil {
			return err
		}
		c := gravity.NewController(cfg.Behavior, cfg.Momentum)
		m, err := hook.NewManager(catalog, patches.Hooks(patches.NewDelegates(c))...)
		if err != nil {
			return err
		}
		if err := m.InstallAll(); err != nil {
			return err
		}
		defer m.UninstallAll()
	}

	u, ok := catalog.Unit(fs.Arg(0))
	if !ok {
		return fmt.Errorf("unknown unit %q (have %v)", fs.Arg(0), catalog.Names())
	}
	decls := u.Decls()
	if fs.NArg() > 1 {
		decls = decls[:0]
		for _, name := range fs.Args()[1:] {
			d, ok := u.Decl(name)
			if !ok {
				return fmt.Errorf("%s: unknown declaration %q", u.Name, name)
			}
			decls = append(decls, d)
		}
	}

	for _, d := range decls {
		b, err := il.Decode(d.Name, d.Fn, u)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "; %s\n%s\n", d.Kind, il.DumpString(b))
	}
	return nil
}
