package handler

import (
	"lobbysync/internal/app/api"
	"lobbysync/internal/app/lobby"
	"lobbysync/internal/app/user"
	"lobbysync/internal/configs"
)

type AppDeps struct {
	Store    *lobby.Store
	Gateway  *api.Client
	Signaler *lobby.TurnSignaler
	Config   *configs.AppConfig
	Me       user.User
}
