package config

type WorkerKeyStruct struct {
	PersistCheatsQueue   string
	PersistSessionsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistCheatsQueue:   "persist_cheats_queue",
	PersistSessionsQueue: "persist_sessions_queue",
}
