package main

import (
	"log"

	_ "github.com/greencampus/facility-reports/docs"

	"github.com/greencampus/facility-reports/config"

	"github.com/greencampus/facility-reports/cmd"
)

// @title                       Facility Reports API
// @version                     1.0
// @description                 School facilities reporting: daily waste logs, weekly resource inventories and unused space surveys.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT token.
func main() {
	log.Printf("facility-reports %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
