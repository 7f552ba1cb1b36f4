// Command createuser adds a staff account for the data entry pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"whatsfresh/internal/account"
	"whatsfresh/internal/model"
	"whatsfresh/pkg/config"
	"whatsfresh/pkg/database"
	"whatsfresh/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "", "username of the new staff user")
	password := flag.String("password", "", "password of the new staff user (defaults to $CREATEUSER_PASSWORD)")
	groups := flag.String("groups", model.GroupDataEntry, "comma separated group names")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("CREATEUSER_PASSWORD")
	}
	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	appConfig, err := config.Load("whats-fresh-createuser")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	defer log.Sync()

	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	var names []string
	for _, g := range strings.Split(*groups, ",") {
		if g = strings.TrimSpace(g); g != "" {
			names = append(names, g)
		}
	}

	user, err := account.NewService(db).CreateUser(context.Background(), *username, *password, names...)
	if err != nil {
		log.Fatal("Failed to create user", zap.String("username", *username), zap.Error(err))
	}
	log.Info("Staff user created",
		zap.String("username", user.Username),
		zap.Uint("user_id", user.ID),
		zap.Strings("groups", user.GroupNames()))
}
