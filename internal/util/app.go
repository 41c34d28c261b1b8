package util

func GetAppName() string {
	return "RadTag"
}
