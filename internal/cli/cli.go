// Package cli implements the treectl commands on top of the tree controller.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/familytree"
)

// ErrUsage is returned for unknown commands and bad arguments
var ErrUsage = errors.New("usage")

const usage = `usage: treectl [global flags] <command> [args]

commands:
  show                     print the tree from the current view root
  navigate <id>            make <id> the view root
  toggle <id>              expand or collapse <id>
  reset                    view the whole tree with only the root expanded
  collapse                 view the root with everything collapsed
  add -name N [-parent ID] [-image URL] [-kind K]
  edit -name N [-image URL] [-kind K] <id>
  delete <id>
  zoom in|out|reset
  rename <tree name>
  font <Cairo|DecoThuluth|DiwaniBent|JassminTypo>
`

// App runs one command against a member store, loading the view state from
// StatePath before and saving it after.
type App struct {
	Store     familytree.MemberStore
	StatePath string
	SeedRoot  string
	Out       io.Writer
}

// Run executes args[0] with the remaining arguments
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Out, usage)
		return ErrUsage
	}

	state, err := familytree.LoadStateFile(a.StatePath)
	if err != nil {
		return err
	}
	opts := []familytree.ControllerOption{familytree.WithState(state)}
	if a.SeedRoot != "" {
		opts = append(opts, familytree.WithSeedRoot(a.SeedRoot))
	}
	ctrl := familytree.NewController(a.Store, opts...)
	if err := ctrl.Reload(ctx); err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "show":
	case "navigate":
		id, err := oneArg(cmd, rest)
		if err != nil {
			return err
		}
		if err := ctrl.Navigate(id); err != nil {
			return err
		}
	case "toggle":
		id, err := oneArg(cmd, rest)
		if err != nil {
			return err
		}
		ctrl.Toggle(id)
	case "reset":
		ctrl.ResetToRoot()
	case "collapse":
		ctrl.CollapseToRoot()
	case "add":
		if err := a.add(ctx, ctrl, rest); err != nil {
			return err
		}
	case "edit":
		if err := a.edit(ctx, ctrl, rest); err != nil {
			return err
		}
	case "delete":
		id, err := oneArg(cmd, rest)
		if err != nil {
			return err
		}
		if err := ctrl.DeleteByID(ctx, id); err != nil {
			return err
		}
	case "zoom":
		action, err := zoomAction(rest)
		if err != nil {
			return err
		}
		ctrl.Dispatch(action)
	case "rename":
		name := strings.TrimSpace(strings.Join(rest, " "))
		if name == "" {
			return fmt.Errorf("%w: rename needs a name", ErrUsage)
		}
		ctrl.Dispatch(familytree.SetTreeName{Name: name})
	case "font":
		font, err := oneArg(cmd, rest)
		if err != nil {
			return err
		}
		if !familytree.ValidTitleFont(font) {
			return fmt.Errorf("%w: unknown font %q", ErrUsage, font)
		}
		ctrl.Dispatch(familytree.SetTitleFont{Font: font})
	default:
		fmt.Fprint(a.Out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}

	if err := familytree.SaveStateFile(a.StatePath, ctrl.State()); err != nil {
		return err
	}
	return Render(a.Out, ctrl)
}

func (a *App) add(ctx context.Context, ctrl *familytree.Controller, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	name := fs.String("name", "", "member name")
	parent := fs.String("parent", "", "parent member id")
	image := fs.String("image", "", "image URL or asset path")
	kind := fs.String("kind", "", "image kind: upload, asset, remote or css-class")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	member, err := ctrl.Add(ctx, models.MemberData{
		Name:      *name,
		ImageURL:  *image,
		ImageKind: models.ImageKind(*kind),
	}, *parent)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "added %s (%s)\n", member.Name, member.ID)
	return nil
}

func (a *App) edit(ctx context.Context, ctrl *familytree.Controller, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	name := fs.String("name", "", "new name (keeps the current one when empty)")
	image := fs.String("image", "", "new image URL")
	kind := fs.String("kind", "", "image kind")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	id, err := oneArg("edit", fs.Args())
	if err != nil {
		return err
	}

	current, ok := ctrl.Member(id)
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("member %s not found", id)}
	}
	data := models.MemberData{
		Name:      *name,
		ImageURL:  *image,
		ImageKind: models.ImageKind(*kind),
	}
	if data.Name == "" {
		data.Name = current.Name
	}

	member, err := ctrl.Edit(ctx, data, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "updated %s (%s)\n", member.Name, member.ID)
	return nil
}

func oneArg(cmd string, args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%w: %s takes exactly one argument", ErrUsage, cmd)
	}
	return args[0], nil
}

func zoomAction(args []string) (familytree.Action, error) {
	dir, err := oneArg("zoom", args)
	if err != nil {
		return nil, err
	}
	switch dir {
	case "in":
		return familytree.ZoomIn{}, nil
	case "out":
		return familytree.ZoomOut{}, nil
	case "reset":
		return familytree.ZoomReset{}, nil
	}
	return nil, fmt.Errorf("%w: zoom in, out or reset", ErrUsage)
}
