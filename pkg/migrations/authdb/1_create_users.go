package authdb

import (
	"context"
	"log"

	mghelper "github.com/lancehub/wallet-sso/pkg/pgutil/migrations"
	"github.com/lancehub/wallet-sso/pkg/userstore"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating users table...")
		if err := mghelper.CreateSchema(ctx, db, &userstore.AccountDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &userstore.AccountDao{}, "user_type", "is_active")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping users table...")
		return mghelper.DropTables(ctx, db, &userstore.AccountDao{})
	})
}
