package database

// Config holds configuration for one database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"mysql"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name. For sqlite it is the file path or ":memory:".
	Name string `mapstructure:"name" default:""`
	// TimeoutSeconds bounds connection setup and each read/write on the wire.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Label returns a printable, password-free description of the connection target.
func (c Config) Label() string {
	if c.Driver == DriverSQLite {
		return "sqlite:" + c.Name
	}
	return c.Driver + "://" + c.User + "@" + c.Host + "/" + c.Name
}
