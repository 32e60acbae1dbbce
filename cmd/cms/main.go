// Command cms runs the blog CMS API and its maintenance tasks.
//
// @title                       Blog CMS API
// @version                     1.0
// @description                 Blog content management API: accounts, posts, comments and image uploads.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
