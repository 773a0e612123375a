// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vendingd/account"
	"github.com/bitmark-inc/vendingd/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "vending.leveldb"

	defaultInboxDirectory  = "inbox"
	defaultOutboxDirectory = "outbox"

	defaultQueueSize = 16
	defaultBurst     = 1

	defaultLogDirectory = "log"
	defaultLogFile      = "vendingd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - location of the LevelDB files
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// InboxType - directories used by the daemon
type InboxType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Outbox    string `gluamapper:"outbox" json:"outbox"`
}

// SequencerType - write queue settings, zero rate is unlimited
type SequencerType struct {
	QueueSize int     `gluamapper:"queue_size" json:"queue_size"`
	Rate      float64 `gluamapper:"rate" json:"rate"`
	Burst     int     `gluamapper:"burst" json:"burst"`
}

// Configuration - everything read from the Lua file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	Contract      string               `gluamapper:"contract" json:"contract"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Inbox         InboxType            `gluamapper:"inbox" json:"inbox"`
	Sequencer     SequencerType        `gluamapper:"sequencer" json:"sequencer"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`

	// decoded from Contract
	ContractAccount *account.Account `json:"-"`
}

// DatabasePath - full path of the LevelDB directory
func (c *Configuration) DatabasePath() string {
	return filepath.Join(c.Database.Directory, c.Database.Name)
}

// Get - read decode and verify the configuration
func Get(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := defaults()

	if err := ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	return options, options.resolve(dataDirectory)
}

func defaults() *Configuration {

	// the Lua levels table is merged into this map
	levels := make(map[string]string, len(defaultLogLevels))
	for tag, level := range defaultLogLevels {
		levels[tag] = level
	}

	return &Configuration{
		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Inbox: InboxType{
			Directory: defaultInboxDirectory,
			Outbox:    defaultOutboxDirectory,
		},

		Sequencer: SequencerType{
			QueueSize: defaultQueueSize,
			Burst:     defaultBurst,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    levels,
		},
	}
}

// check values and expand all paths relative to the data directory
func (options *Configuration) resolve(configDirectory string) error {

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = configDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return err
	} else if !fileInfo.IsDir() {
		return fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	if "" == options.Contract {
		return fmt.Errorf("contract account is not set")
	}
	contract, err := account.FromBase58(options.Contract)
	if nil != err {
		return fmt.Errorf("contract: %q is not a valid account: %s", options.Contract, err)
	}
	options.ContractAccount = contract

	if options.Sequencer.QueueSize <= 0 {
		options.Sequencer.QueueSize = defaultQueueSize
	}
	if options.Sequencer.Rate < 0 {
		options.Sequencer.Rate = 0
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Inbox.Directory,
		&options.Inbox.Outbox,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	return nil
}
