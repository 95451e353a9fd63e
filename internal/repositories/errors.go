package repositories

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "isp-system/pkg/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapPgError переводит ошибки драйвера в доменные.
func mapPgError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.NewHttpError(http.StatusConflict, fmt.Sprintf("%s: запись с такими данными уже существует", entity), apperrors.ErrConflict, map[string]string{"constraint": pgErr.ConstraintName})
		case pgForeignKeyViolation:
			return apperrors.NewInvalidInputError("%s: ссылка на несуществующую запись (%s)", entity, pgErr.ConstraintName)
		case pgCheckViolation:
			return apperrors.NewInvalidInputError("%s: нарушено ограничение %s", entity, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", entity, err)
}
