// Command qgen is a small operator console over the backend API: log in,
// inspect the session, and list collection contents from a terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kmulambia/qgen-client/internal/config"
	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/session"
	"github.com/kmulambia/qgen-client/internal/logging"
	"github.com/kmulambia/qgen-client/internal/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	reg, err := registry.New(cfg, logger)
	if err != nil {
		log.Fatalf("registry: %v", err)
	}
	reg.Restore()

	if len(os.Args) < 2 {
		usage()
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "login":
		runLogin(ctx, reg, os.Args[2:])
	case "logout":
		reg.Session.Logout()
		fmt.Println("logged out")
	case "whoami":
		runWhoami(reg)
	case "list":
		runList(ctx, reg, os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: qgen <login|logout|whoami|list> [flags]")
	os.Exit(2)
}

func runLogin(ctx context.Context, reg *registry.Registry, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		log.Fatal("login requires -email and -password")
	}

	creds := session.Credentials{Email: *email, Password: *password}
	if _, err := reg.Session.Login(ctx, creds); err != nil {
		log.Fatalf("login failed: %v", err)
	}
	fmt.Printf("logged in as %s\n", reg.Session.Email())
}

func runWhoami(reg *registry.Registry) {
	if !reg.Session.ValidateSession() {
		fmt.Println("not logged in")
		return
	}
	if user := reg.Session.CurrentUser(); user != nil {
		fmt.Printf("%s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	}
	if role := reg.Session.UserRole(); role != nil {
		fmt.Printf("role: %s\n", role.Name)
	}
	if codes := reg.Session.PermissionCodes(); len(codes) > 0 {
		fmt.Printf("permissions: %s\n", strings.Join(codes, ", "))
	}
}

func runList(ctx context.Context, reg *registry.Registry, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", 10, "items per page")
	search := fs.String("search", "", "search text")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatal("list requires a collection name")
	}

	override := &resource.Params{Page: *page, PageSize: *pageSize, Search: *search}

	var (
		payload any
		err     error
	)
	switch fs.Arg(0) {
	case "users":
		payload, err = reg.Users.GetMany(ctx, override, nil, false)
	case "roles":
		payload, err = reg.Roles.GetMany(ctx, override, nil, false)
	case "permissions":
		payload, err = reg.Permissions.GetMany(ctx, override, nil, false)
	case "role-permissions":
		payload, err = reg.RolePermissions.GetMany(ctx, override, nil, false)
	case "workspaces":
		payload, err = reg.Workspaces.GetMany(ctx, override, nil, false)
	case "workspace-types":
		payload, err = reg.WorkspaceTypes.GetMany(ctx, override, nil, false)
	case "user-workspaces":
		payload, err = reg.UserWorkspaces.GetMany(ctx, override, nil, false)
	case "clients":
		payload, err = reg.Clients.GetMany(ctx, override, nil, false)
	case "quotations":
		payload, err = reg.Quotations.GetMany(ctx, override, nil, false)
	case "layouts":
		payload, err = reg.Layouts.GetMany(ctx, override, nil, false)
	case "audits":
		payload, err = reg.Audits.GetMany(ctx, override, nil, false)
	case "files":
		payload, err = reg.Files.GetMany(ctx, override, nil, false)
	default:
		log.Fatalf("unknown collection %q", fs.Arg(0))
	}
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	fmt.Println(string(out))
}
