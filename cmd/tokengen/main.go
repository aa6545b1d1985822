package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/omerg864/SecuRent-sub001/internal/auth"
	"github.com/omerg864/SecuRent-sub001/internal/config"
	"github.com/omerg864/SecuRent-sub001/internal/models"
)

// tokengen mints a role-scoped bearer token for local testing:
//
//	go run ./cmd/tokengen -role business -id 507f1f77bcf86cd799439011
func main() {
	roleFlag := flag.String("role", "customer", "principal role (customer, business or admin)")
	idFlag := flag.String("id", "", "principal id (mongo hex object id)")
	ttlFlag := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *idFlag == "" {
		log.Fatal("missing -id")
	}

	role, err := models.ParseRole(*roleFlag)
	if err != nil {
		log.Fatal(err)
	}

	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	var secret string
	switch role {
	case models.RoleCustomer:
		secret = cfg.JWT.CustomerSecret
	case models.RoleBusiness:
		secret = cfg.JWT.BusinessSecret
	case models.RoleAdmin:
		secret = cfg.JWT.AdminSecret
	}

	token, err := auth.Sign(role, *idFlag, secret, *ttlFlag)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
