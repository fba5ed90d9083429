package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcspragu/Conquest/cryptorand"
	"github.com/bcspragu/Conquest/sqldb"
	"github.com/bcspragu/Conquest/web"
	"github.com/gorilla/securecookie"
	"github.com/namsral/flag"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "HTTP service address")
		dbPath       = flag.String("db_path", "conquest.db", "Path to the SQLite DB file")
		hashKeyPath  = flag.String("hash_key_path", "hashKey", "Path to the cookie hash key, generated if it doesn't exist")
		blockKeyPath = flag.String("block_key_path", "blockKey", "Path to the cookie block key, generated if it doesn't exist")
	)

	flag.Parse()

	db, err := sqldb.New(*dbPath, cryptorand.NewSource())
	if err != nil {
		log.Fatalf("failed to initialize datastore: %v", err)
	}

	sc, err := loadKeys(*hashKeyPath, *blockKeyPath)
	if err != nil {
		log.Fatalf("failed to load cookie keys: %v", err)
	}

	srv := web.New(db, cryptorand.New(), sc)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		srv.Close()
		db.Close()
		os.Exit(1)
	}()

	log.Printf("Server is running on %q", *addr)
	if err := http.ListenAndServe(*addr, srv); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func loadKeys(hashKeyPath, blockKeyPath string) (*securecookie.SecureCookie, error) {
	hashKey, err := loadOrGenKey(hashKeyPath)
	if err != nil {
		return nil, err
	}

	blockKey, err := loadOrGenKey(blockKeyPath)
	if err != nil {
		return nil, err
	}

	return securecookie.New(hashKey, blockKey), nil
}

func loadOrGenKey(name string) ([]byte, error) {
	f, err := ioutil.ReadFile(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read key %q: %w", name, err)
	}

	dat := securecookie.GenerateRandomKey(32)
	if dat == nil {
		return nil, errors.New("failed to generate key")
	}

	if err := ioutil.WriteFile(name, dat, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key %q: %w", name, err)
	}
	return dat, nil
}
