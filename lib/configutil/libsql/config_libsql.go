package configlibsql

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/Karikari1234/shopify-products-scraper/lib/sqliteutil"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Struct) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		db, err := sql.Open("libsql", config.Url+"?"+values.Encode())
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	return sqliteutil.OpenDB("", config.File)
}
