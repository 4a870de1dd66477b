// @title Interview Prep 后端 API
// @version 1.0
// @description 面试练习平台的回答评估与表现分析服务。

// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"os"

	"interview_prep_backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
