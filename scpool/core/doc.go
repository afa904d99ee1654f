package core

/*
----------------------------------------------------------------
-KOR
설계목적:
비싼 자원(TCP 연결, gRPC 채널, 파일 핸들)을 매번 새로 만드는 대신,
제한된 개수만 만들어 재사용하는 것이 scpool의 목적입니다.

Acquire는 가장 최근에 반납된 자원을 먼저 꺼냅니다. 따뜻한 자원이
(예: TCP keep-alive가 살아있는 연결) 재사용 가치가 더 높기 때문입니다.
풀이 가득 찼을 때 대기자는 도착 순서대로(FIFO) 자원을 받습니다.

reaper는 주기적으로 idle 자원을 검사해서 IdleTimeout, MaxLifetime이
지난 자원을 정리하고, MinSize까지 다시 채웁니다.

----------------------------------------------------------------
-ENG

Design Purpose:
Instead of building an expensive resource (a TCP connection, a gRPC
channel, a file handle) on every use, scpool keeps a bounded set of
them alive and hands them out for reuse.

Acquire pops the most recently released resource first, because a warm
resource (say, a connection with TCP keep-alive still going) is worth
more than one that has been sitting around. When the pool is full,
blocked acquirers are served strictly in arrival order (FIFO).

The reaper periodically walks the idle set, retires resources past
IdleTimeout or MaxLifetime, and refills the population up to MinSize.

*/
