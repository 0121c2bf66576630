package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/studybuddy-backend/internal/app"
	"github.com/yungbote/studybuddy-backend/internal/platform/envutil"
)

func main() {
	var email, password string
	flag.StringVar(&email, "email", envutil.String("ADMIN_EMAIL", ""), "admin email (default $ADMIN_EMAIL)")
	flag.StringVar(&password, "password", envutil.String("ADMIN_PASSWORD", ""), "admin password (default $ADMIN_PASSWORD)")
	flag.Parse()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		fmt.Println("usage: createadmin -email admin@example.com -password secret")
		os.Exit(2)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	u, created, err := application.Services.Auth.EnsureAdmin(context.Background(), email, password)
	if err != nil {
		fmt.Printf("ensure admin: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("created admin %s (%s)\n", u.Email, u.ID)
		return
	}
	fmt.Printf("%s is an admin (%s)\n", u.Email, u.ID)
}
