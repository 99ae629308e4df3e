// Package csvimport は銘柄ごとのCSVファイルから代替データを読み込みます。
package csvimport

import "os"

// Config はCSV取り込みの設定を保持します。
type Config struct {
	Directory string // <TICKER>.csv を置くディレクトリ
}

// LoadConfig は環境変数DATA_DIRECTORYから設定を読み込みます。
func LoadConfig() Config {
	return Config{Directory: os.Getenv("DATA_DIRECTORY")}
}

// Enabled はディレクトリが設定されているかを返します。
func (c Config) Enabled() bool {
	return c.Directory != ""
}
