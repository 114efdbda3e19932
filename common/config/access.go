package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var Path = "ftp-sync.yaml"

var instance *SyncConfig
var singletonLock = &sync.Once{}

func reloadConfig() (*SyncConfig, error) {
	c := NewDefaultSyncConfig()

	// Write a default config if the one given doesn't exist
	_, err := os.Stat(Path)
	exists := err == nil || !os.IsNotExist(err)
	if !exists {
		fmt.Println("Generating new configuration...")
		configBytes, err := yaml.Marshal(c)
		if err != nil {
			return nil, err
		}

		newFile, err := os.Create(Path)
		if err != nil {
			return nil, err
		}

		_, err = newFile.Write(configBytes)
		if err != nil {
			return nil, err
		}

		err = newFile.Close()
		if err != nil {
			return nil, err
		}
	}

	buffer, err := os.ReadFile(Path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(buffer, &c)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func Get() *SyncConfig {
	if instance == nil {
		singletonLock.Do(func() {
			c, err := reloadConfig()
			if err != nil {
				logrus.Fatal(err)
			}
			instance = c
		})
	}
	return instance
}
