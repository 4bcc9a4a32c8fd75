package contracts

type InputFlags struct {
	InputRootDir  string
	ConfigFile    string
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}
