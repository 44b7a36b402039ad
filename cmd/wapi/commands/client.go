package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/wapi/internal/constants"
	"github.com/fivetwenty-io/wapi/internal/logging"
	"github.com/fivetwenty-io/wapi/internal/notify"
	"github.com/fivetwenty-io/wapi/pkg/session"
	"golang.org/x/term"
)

// passwordReader reads a password without echo. Tests replace it.
var passwordReader = func() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", constants.ErrPasswordUnreadable
	}

	_, _ = fmt.Fprint(os.Stderr, "Password: ")

	password, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimSpace(string(password)), nil
}

// newSession connects to the configured grid master. The returned close
// function releases the change publisher, if any.
func newSession() (*session.Session, func(), error) {
	config := loadConfig()

	if config.Host == "" {
		return nil, nil, constants.ErrNoHostConfigured
	}

	if config.Username == "" {
		return nil, nil, constants.ErrNoUsername
	}

	if config.Password == "" {
		password, err := passwordReader()
		if err != nil {
			return nil, nil, err
		}

		config.Password = password
	}

	logger := logging.New("[wapi]", config.Debug)

	sessionConfig := &session.Config{
		Host:          config.Host,
		Username:      config.Username,
		Password:      config.Password,
		WAPIVersion:   config.WAPIVersion,
		SkipTLSVerify: config.SkipTLSVerify,
		HTTPTimeout:   config.Timeout,
		Debug:         config.Debug,
		Logger:        logger,
		CatalogFile:   config.Catalog,
	}

	closer := func() { logger.Flush() }

	if config.NATSURL != "" {
		publisher, err := notify.Connect(config.NATSURL, config.SubjectPrefix)
		if err != nil {
			return nil, nil, err
		}

		sessionConfig.Observer = publisher
		closer = func() {
			err := publisher.Close()
			if err != nil {
				logger.Warn("Closing change publisher failed", map[string]interface{}{"error": err.Error()})
			}

			logger.Flush()
		}
	}

	s, err := session.New(sessionConfig)
	if err != nil {
		closer()

		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s, closer, nil
}
