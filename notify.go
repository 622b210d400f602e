package main

type Notifier interface {
	NotifySyncResults(SyncConfig, *ResultMap) error
}
