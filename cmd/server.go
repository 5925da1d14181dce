/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	devConfig "github.com/Daskott/glucowatch/dev/config"
	"github.com/Daskott/glucowatch/server"
	"github.com/Daskott/glucowatch/server/auth/key"
	"github.com/Daskott/glucowatch/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start a glucowatch server",
	Long:  `The glucowatch server houses the glucose tracking, medication reminder & emergency contact alerting APIs`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(serverConfig(), isDevEnv)
	},
}

var serverCongFile string

func init() {
	rootCmd.AddCommand(serverCmd)

	// TODO: Make this required, when not in dev mode
	serverCmd.Flags().StringVar(&serverCongFile, "sconfig", "", "Config for server")
}

func serverConfig() *viper.Viper {
	config = viper.New()

	if isDevEnv {
		serverCongFile = devConfigFilePath()
		bootstrapDevConfig()
	}

	config.SetConfigFile(serverCongFile)
	config.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := config.ReadInConfig(); err != nil {
		log.Panic(fmt.Sprintf("error reading server config file: %v", err))
	}

	return config
}

// bootstrapDevConfig writes a default server.yml & signing key into
// dev/config, so a dev server can boot without any manual setup.
func bootstrapDevConfig() {
	configDir := filepath.Dir(serverCongFile)
	cobra.CheckErr(utils.CreateDirIfNotExist(configDir))

	if _, err := os.Stat(serverCongFile); os.IsNotExist(err) {
		cobra.CheckErr(ioutil.WriteFile(serverCongFile, []byte(devConfig.SERVER_YML), 0600))
	}

	keyFilePath := filepath.Join(configDir, "private-key.pem")
	if _, err := os.Stat(keyFilePath); os.IsNotExist(err) {
		pemBytes, err := key.GeneratePrivateKeyPem()
		cobra.CheckErr(err)
		cobra.CheckErr(ioutil.WriteFile(keyFilePath, pemBytes, 0600))
	}
}

func devConfigFilePath() string {
	configDir, err := os.Getwd()
	if err != nil {
		log.Panic(err)
	}

	return filepath.Join(configDir, "dev", "config", "server.yml")
}
