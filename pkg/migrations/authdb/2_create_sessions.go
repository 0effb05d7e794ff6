package authdb

import (
	"context"
	"log"

	mghelper "github.com/lancehub/wallet-sso/pkg/pgutil/migrations"
	"github.com/lancehub/wallet-sso/pkg/sessionstore"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating sessions table...")
		if err := mghelper.CreateSchema(ctx, db, &sessionstore.SessionDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &sessionstore.SessionDao{}, "user_id", "expires_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping sessions table...")
		return mghelper.DropTables(ctx, db, &sessionstore.SessionDao{})
	})
}
