package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConnectWithRetry uses retry options set in ConnectionOptions{}
func ConnectWithRetry(ctx context.Context, options ConnectionOptions) (*sqlx.DB, error) {
	dsn := MaskDSN(options.Credentials.DSN)
	log := logrus.WithField("dsn", dsn)

	if options.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.ConnectTimeout)
		defer cancel()
	}

	log.Info("connecting to database")

	try := 0
	for {
		try++
		db, err := ConnectWithOptions(ctx, options)
		if err == nil {
			return db, nil
		}
		if try >= options.Retries {
			return nil, errors.Wrapf(err, "could not connect, dsn=%s, tries=%d", dsn, try)
		}

		log.WithError(err).WithField("try", try).Warn("can't connect")

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, errors.Errorf("db connect timed out, dsn=%s", dsn)
			}
			return nil, errors.Errorf("db connection cancelled, dsn=%s", dsn)
		case <-time.After(options.RetryDelay):
		}
	}
}
