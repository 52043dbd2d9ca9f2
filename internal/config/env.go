package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFilePath is the optional dotenv file read before ApplyEnv.
const EnvFilePath = ".env"

// envPrefix limits LoadEnvFile to the variables ApplyEnv reads.
const envPrefix = "SIM_"

// LoadEnvFile reads the dotenv file at path and exports the SIM_* keys that are not already set,
// so the real environment wins over the file. A missing file is not an error.
func LoadEnvFile(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for key, value := range values {
		if !strings.HasPrefix(key, envPrefix) {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}
