package dbconnect

type Database interface {
	DbConnector
	Ping() error
	DriverName() string
}
